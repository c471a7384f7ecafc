package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CoquiClient synthesizes speech through a local Coqui TTS server
// (GET /api/tts?text=...), which returns a complete WAV body.
type CoquiClient struct {
	BaseURL        string
	DefaultSpeaker string
	HTTPClient     *http.Client
}

func NewCoquiClient(baseURL, defaultSpeaker string) *CoquiClient {
	return &CoquiClient{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		DefaultSpeaker: defaultSpeaker,
		HTTPClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *CoquiClient) Name() string { return "coqui" }

func (c *CoquiClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("coqui base url missing")
	}
	if text == "" {
		return nil, fmt.Errorf("coqui: text must not be empty")
	}
	if voice == "" {
		voice = c.DefaultSpeaker
	}

	q := url.Values{}
	q.Set("text", text)
	if voice != "" {
		q.Set("speaker_id", voice)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coqui error: status=%d body=%s", resp.StatusCode, string(b))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("coqui: empty audio body")
	}
	return audio, nil
}

func (c *CoquiClient) Healthcheck(ctx context.Context) error {
	if c.BaseURL == "" {
		return fmt.Errorf("coqui base url missing")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("coqui health: status=%d", resp.StatusCode)
	}
	return nil
}
