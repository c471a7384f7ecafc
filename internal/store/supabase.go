package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SupabaseUploader mirrors saved artifacts into a Supabase storage bucket
// over the REST object API. Uploads run within the caller's deadline, so a
// slow mirror can never outlive the synthesis budget of the turn.
type SupabaseUploader struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseUploader(baseURL, serviceKey, bucket string) *SupabaseUploader {
	return &SupabaseUploader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{},
	}
}

// Upload upserts one object into the bucket. Re-saving a session artifact
// overwrites the previous object, matching the local last-write-wins files.
func (s *SupabaseUploader) Upload(ctx context.Context, objectKey string, contentType string, body []byte) error {
	if s.baseURL == "" || s.serviceKey == "" {
		return fmt.Errorf("store: supabase mirror not configured")
	}

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("store: build mirror request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store: mirror upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("store: mirror upload status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
