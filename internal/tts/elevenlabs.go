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

const elevenLabsHost = "api.elevenlabs.io"

// ElevenLabsClient synthesizes speech via the ElevenLabs one-shot
// text-to-speech endpoint.
type ElevenLabsClient struct {
	APIKey         string
	DefaultVoiceID string
	HTTPClient     *http.Client
	host           string
	scheme         string
}

func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		APIKey:         apiKey,
		DefaultVoiceID: voiceID,
		HTTPClient:     &http.Client{Timeout: 15 * time.Second},
		host:           elevenLabsHost,
		scheme:         "https",
	}
}

func (e *ElevenLabsClient) Name() string { return "elevenlabs" }

func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if e.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs: api key missing")
	}
	if voice == "" {
		voice = e.DefaultVoiceID
	}
	if voice == "" {
		return nil, fmt.Errorf("elevenlabs: voice id missing")
	}
	if text == "" {
		return nil, fmt.Errorf("elevenlabs: text must not be empty")
	}

	u := url.URL{
		Scheme: e.scheme,
		Host:   e.host,
		Path:   "/v1/text-to-speech/" + voice,
	}
	body := map[string]any{
		"model_id": "eleven_flash_v2_5",
		"text":     text,
		"voice_settings": map[string]any{
			"stability":        0.4,
			"similarity_boost": 0.7,
		},
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs http status=%d body=%s", resp.StatusCode, string(b))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs read error: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio body")
	}
	return audio, nil
}

func (e *ElevenLabsClient) Healthcheck(ctx context.Context) error {
	if e.APIKey == "" {
		return fmt.Errorf("elevenlabs: api key missing")
	}
	u := url.URL{Scheme: e.scheme, Host: e.host, Path: "/v1/voices"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("elevenlabs health: status=%d", resp.StatusCode)
	}
	return nil
}
