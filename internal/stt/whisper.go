package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// WhisperClient talks to a whisper-server sidecar that accepts multipart
// audio uploads on POST /transcribe and answers {"text": "..."}.
type WhisperClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

func NewWhisperClient(baseURL string) *WhisperClient {
	return &WhisperClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Transcribe sends the audio bytes for transcription and returns the
// recognized text. A single attempt, no retry.
func (c *WhisperClient) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("whisper base url missing")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transcribe", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("whisper error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var tr transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.Error != "" {
		return "", fmt.Errorf("whisper error: %s", tr.Error)
	}
	return strings.TrimSpace(tr.Text), nil
}

// Healthcheck probes the sidecar's /health endpoint.
func (c *WhisperClient) Healthcheck(ctx context.Context) error {
	if c.BaseURL == "" {
		return fmt.Errorf("whisper base url missing")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisper health: status=%d", resp.StatusCode)
	}
	return nil
}
