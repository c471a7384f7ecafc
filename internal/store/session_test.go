package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffcav/english-teacher-ai/internal/domain"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSessionStore_LoadMissingIsEmpty(t *testing.T) {
	s := newTestStore(t)
	turns, err := s.Load("nobody")
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestSessionStore_AppendPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	before, err := s.Load("sess")
	require.NoError(t, err)

	require.NoError(t, s.Append("sess", domain.Turn{User: "one", Coaching: "c1", Conversational: "r1"}))
	require.NoError(t, s.Append("sess", domain.Turn{User: "two", Coaching: "c2", Conversational: "r2"}))

	after, err := s.Load("sess")
	require.NoError(t, err)
	require.Len(t, after, len(before)+2)
	require.Equal(t, "one", after[0].User)
	require.Equal(t, "two", after[1].User)
}

func TestSessionStore_AppendAddsExactlyOneAtTail(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append("sess", domain.Turn{User: "a", Coaching: "c", Conversational: "r"}))
	before, err := s.Load("sess")
	require.NoError(t, err)

	require.NoError(t, s.Append("sess", domain.Turn{User: "tail", Coaching: "c", Conversational: "r"}))
	after, err := s.Load("sess")
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	require.Equal(t, "tail", after[len(after)-1].User)
}

func TestSessionStore_ClearIsEffectiveAndIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append("sess", domain.Turn{User: "a", Coaching: "c", Conversational: "r"}))

	existed, err := s.Clear("sess")
	require.NoError(t, err)
	require.True(t, existed)

	turns, err := s.Load("sess")
	require.NoError(t, err)
	require.Empty(t, turns)

	existed, err = s.Clear("sess")
	require.NoError(t, err)
	require.False(t, existed)

	turns, err = s.Load("sess")
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestSessionStore_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSessionStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conversations", "bad.json"), []byte("{not json"), 0o644))

	_, err = s.Load("bad")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCorrupt))

	// Append replaces the corrupt record instead of failing.
	require.NoError(t, s.Append("bad", domain.Turn{User: "fresh", Coaching: "c", Conversational: "r"}))
	turns, err := s.Load("bad")
	require.NoError(t, err)
	require.Len(t, turns, 1)
}

func TestSessionStore_ConcurrentAppendsSameSession(t *testing.T) {
	s := newTestStore(t)
	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = s.Append("sess", domain.Turn{
				User:           fmt.Sprintf("u%d", i),
				Coaching:       "c",
				Conversational: "r",
			})
		}(i)
	}
	wg.Wait()

	turns, err := s.Load("sess")
	require.NoError(t, err)
	require.Len(t, turns, n, "no appended turn may be lost")
}

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"simple-id_1.2", "simple-id_1.2"},
		{"../../etc/passwd", "_.._etc_passwd"},
		{"", "_"},
		{"..", "_"},
		{"a b/c", "a_b_c"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeID(tc.in), "input %q", tc.in)
	}
}
