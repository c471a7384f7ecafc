package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ArtifactType tags the two synthesized audio payloads of a turn.
type ArtifactType string

const (
	ArtifactCoaching       ArtifactType = "coaching"
	ArtifactConversational ArtifactType = "conversational"
)

// ParseArtifactType validates a client-supplied type tag.
func ParseArtifactType(s string) (ArtifactType, bool) {
	switch ArtifactType(s) {
	case ArtifactCoaching, ArtifactConversational:
		return ArtifactType(s), true
	}
	return "", false
}

// Uploader abstracts the optional remote mirror for saved artifacts.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, contentType string, body []byte) error
}

// ArtifactStore keeps the two current audio artifacts per session as
// {session}_{type}.wav files, last-write-wins. When an Uploader is
// configured, saved artifacts are additionally mirrored best-effort.
type ArtifactStore struct {
	dir      string
	uploader Uploader
}

func NewArtifactStore(dataDir string, uploader Uploader) (*ArtifactStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dataDir, uploader: uploader}, nil
}

// Save writes the artifact for session+type, replacing any previous one.
// The mirror upload, when configured, is bounded by ctx.
func (a *ArtifactStore) Save(ctx context.Context, sessionID string, t ArtifactType, audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("store: refusing to save empty artifact")
	}
	path := a.path(sessionID, t)
	if err := writeFileAtomic(path, audio); err != nil {
		return err
	}
	if a.uploader != nil {
		key := filepath.Base(path)
		if err := a.uploader.Upload(ctx, key, "audio/wav", audio); err != nil {
			log.Printf("artifact mirror upload failed for %s: %v", key, err)
		}
	}
	return nil
}

// Open returns the path of the current artifact for session+type, or an
// error satisfying os.IsNotExist when none has been produced yet.
func (a *ArtifactStore) Open(sessionID string, t ArtifactType) (string, error) {
	path := a.path(sessionID, t)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func (a *ArtifactStore) path(sessionID string, t ArtifactType) string {
	return filepath.Join(a.dir, fmt.Sprintf("%s_%s.wav", SanitizeID(sessionID), t))
}
