package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const deepgramHost = "api.deepgram.com"

// DeepgramClient synthesizes speech via the Deepgram REST speak endpoint,
// requesting a complete linear16 WAV body.
type DeepgramClient struct {
	APIKey       string
	DefaultModel string
	HTTPClient   *http.Client
	host         string
	scheme       string
}

func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &DeepgramClient{
		APIKey:       apiKey,
		DefaultModel: model,
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
		host:         deepgramHost,
		scheme:       "https",
	}
}

func (d *DeepgramClient) Name() string { return "deepgram" }

func (d *DeepgramClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if d.APIKey == "" {
		return nil, fmt.Errorf("deepgram: api key missing")
	}
	if text == "" {
		return nil, fmt.Errorf("deepgram: text must not be empty")
	}
	if voice == "" {
		voice = d.DefaultModel
	}

	q := url.Values{}
	q.Set("model", voice)
	q.Set("encoding", "linear16")
	q.Set("container", "wav")
	u := url.URL{Scheme: d.scheme, Host: d.host, Path: "/v1/speak", RawQuery: q.Encode()}

	buf, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+d.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("deepgram http status=%d body=%s", resp.StatusCode, string(b))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram read error: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("deepgram: empty audio body")
	}
	return audio, nil
}

func (d *DeepgramClient) Healthcheck(ctx context.Context) error {
	if d.APIKey == "" {
		return fmt.Errorf("deepgram: api key missing")
	}
	u := url.URL{Scheme: d.scheme, Host: d.host, Path: "/v1/projects"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+d.APIKey)
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deepgram health: status=%d", resp.StatusCode)
	}
	return nil
}
