package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeffcav/english-teacher-ai/internal/domain"
)

var (
	// ErrCorrupt marks a session record that exists but can not be parsed.
	// Callers treat history as empty rather than aborting the turn.
	ErrCorrupt = errors.New("store: session record corrupt")
	// ErrPersist marks a turn that could not be committed to disk. The
	// in-memory result is still valid for the current response.
	ErrPersist = errors.New("store: session record not persisted")
)

// SessionStore keeps one append-only JSON record per session id under
// dir/conversations. A per-session mutex serializes read-modify-append
// within this process; cross-process single-writer is a caller contract.
type SessionStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionStore(dataDir string) (*SessionStore, error) {
	dir := filepath.Join(dataDir, "conversations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create conversations dir: %w", err)
	}
	return &SessionStore{dir: dir, locks: map[string]*sync.Mutex{}}, nil
}

// Load returns the ordered turn history for the session, or an empty
// sequence if no record exists.
func (s *SessionStore) Load(sessionID string) ([]domain.Turn, error) {
	raw, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var turns []domain.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return turns, nil
}

// Append adds one turn at the tail of the session record. A corrupt
// existing record is replaced rather than blocking the append.
func (s *SessionStore) Append(sessionID string, turn domain.Turn) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	turns, err := s.Load(sessionID)
	if err != nil {
		turns = nil
	}
	turns = append(turns, turn)

	enc, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := writeFileAtomic(s.path(sessionID), enc); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Clear removes all turns for the session and reports whether a record
// existed. A missing record is a no-op success.
func (s *SessionStore) Clear(sessionID string) (bool, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SessionStore) path(sessionID string) string {
	return filepath.Join(s.dir, SanitizeID(sessionID)+".json")
}

func (s *SessionStore) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := SanitizeID(sessionID)
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// SanitizeID maps an opaque session id onto a safe file name component.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		out = "_"
	}
	return out
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
