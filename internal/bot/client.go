package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/jeffcav/english-teacher-ai/internal/domain"
)

// Client talks to the tutoring backend over its HTTP API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			// One pass runs STT, generation and two syntheses.
			Timeout: 120 * time.Second,
		},
	}
}

type AudioStatus struct {
	Available bool   `json:"available"`
	URL       string `json:"url"`
	Error     string `json:"error"`
}

type ProcessResult struct {
	SessionID              string      `json:"session_id"`
	UserTranscript         string      `json:"user_transcript"`
	CoachingFeedback       string      `json:"coaching_feedback"`
	ConversationalResponse string      `json:"conversational_response"`
	CoachingAudio          AudioStatus `json:"coaching_audio"`
	ConversationalAudio    AudioStatus `json:"conversational_audio"`
}

// Process uploads one recording and returns the tutoring response.
func (c *Client) Process(ctx context.Context, sessionID, filename string, audio []byte) (ProcessResult, error) {
	var result ProcessResult
	if c.BaseURL == "" {
		return result, fmt.Errorf("backend URL is not configured")
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return result, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return result, fmt.Errorf("failed to build upload: %w", err)
	}
	if sessionID != "" {
		_ = w.WriteField("session_id", sessionID)
	}
	if err := w.Close(); err != nil {
		return result, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/process", body)
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := readDetail(resp.Body)
		return result, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, detail)
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("failed to parse backend response: %w", err)
	}
	return result, nil
}

// History fetches the full conversation for a session.
func (c *Client) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/conversation/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	var payload struct {
		History []domain.Turn `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse backend response: %w", err)
	}
	return payload.History, nil
}

// ClearSession deletes the stored conversation for a session.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.BaseURL+"/conversation/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

// Audio downloads a synthesized artifact referenced by a process response.
func (c *Client) Audio(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}

// Healthcheck verifies the backend answers its health endpoint.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend is unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend health returned status %d", resp.StatusCode)
	}
	return nil
}

func readDetail(r io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || payload.Detail == "" {
		return "no detail"
	}
	return payload.Detail
}
