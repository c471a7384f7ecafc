package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// SessionMap pins each Telegram user to one backend conversation session.
// The mapping survives restarts so users keep their history.
type SessionMap struct {
	path string

	mu     sync.Mutex
	byUser map[int64]string
}

func NewSessionMap(path string) (*SessionMap, error) {
	m := &SessionMap{path: path, byUser: map[int64]string{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session map: %w", err)
	}
	if err := json.Unmarshal(data, &m.byUser); err != nil {
		return nil, fmt.Errorf("parse session map %s: %w", path, err)
	}
	return m, nil
}

// GetOrCreate returns the user's session id, minting one on first contact.
func (m *SessionMap) GetOrCreate(userID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byUser[userID]; ok {
		return id
	}
	id := newSessionID()
	m.byUser[userID] = id
	m.save()
	return id
}

// Reset assigns the user a fresh session id and returns it.
func (m *SessionMap) Reset(userID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := newSessionID()
	m.byUser[userID] = id
	m.save()
	return id
}

// Current returns the user's session id without creating one.
func (m *SessionMap) Current(userID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUser[userID]
	return id, ok
}

func newSessionID() string {
	return "tg-" + uuid.NewString()
}

// save writes the mapping atomically. Failures are logged by the caller's
// next read; a stale file only costs the user a fresh session.
func (m *SessionMap) save() {
	data, err := json.MarshalIndent(m.byUser, "", "  ")
	if err != nil {
		return
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, m.path)
}

// DefaultSessionMapPath places the mapping next to the conversation data.
func DefaultSessionMapPath(dataDir string) string {
	return filepath.Join(dataDir, "telegram_sessions.json")
}
