package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeffcav/english-teacher-ai/internal/domain"
)

// OllamaClient is a minimal client for the Ollama /api/chat endpoint.
type OllamaClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Model   string             `json:"model"`
	Message domain.ChatMessage `json:"message"`
	Done    bool               `json:"done"`
}

func NewOllamaClient(baseURL string) *OllamaClient {
	return &OllamaClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Chat sends one non-streaming chat completion request and returns the
// assistant message content. A single attempt, no retry.
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("ollama base url missing")
	}
	if model == "" {
		return "", fmt.Errorf("ollama model missing")
	}

	reqBody, _ := json.Marshal(chatRequest{Model: model, Messages: messages, Stream: false})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	answer := strings.TrimSpace(cr.Message.Content)
	if answer == "" {
		return "", fmt.Errorf("ollama: empty completion")
	}
	return answer, nil
}

// Healthcheck verifies the Ollama runtime is reachable.
func (c *OllamaClient) Healthcheck(ctx context.Context) error {
	if c.BaseURL == "" {
		return fmt.Errorf("ollama base url missing")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health: status=%d", resp.StatusCode)
	}
	return nil
}
