package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	keys []string
	err  error
}

func (u *recordingUploader) Upload(ctx context.Context, objectKey, contentType string, body []byte) error {
	u.keys = append(u.keys, objectKey)
	return u.err
}

func TestArtifactStore_SaveAndOpen(t *testing.T) {
	a, err := NewArtifactStore(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, a.Save(context.Background(), "sess", ArtifactCoaching, []byte("RIFFone")))
	path, err := a.Open("sess", ArtifactCoaching)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "RIFFone", string(data))

	// Last write wins.
	require.NoError(t, a.Save(context.Background(), "sess", ArtifactCoaching, []byte("RIFFtwo")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "RIFFtwo", string(data))
}

func TestArtifactStore_OpenMissing(t *testing.T) {
	a, err := NewArtifactStore(t.TempDir(), nil)
	require.NoError(t, err)
	_, err = a.Open("sess", ArtifactConversational)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestArtifactStore_RefusesEmptyArtifact(t *testing.T) {
	a, err := NewArtifactStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.Error(t, a.Save(context.Background(), "sess", ArtifactCoaching, nil))
}

func TestArtifactStore_MirrorIsBestEffort(t *testing.T) {
	up := &recordingUploader{err: os.ErrDeadlineExceeded}
	a, err := NewArtifactStore(t.TempDir(), up)
	require.NoError(t, err)

	// A failing mirror must not fail the save.
	require.NoError(t, a.Save(context.Background(), "sess", ArtifactConversational, []byte("RIFF")))
	require.Equal(t, []string{"sess_conversational.wav"}, up.keys)

	path, err := a.Open("sess", ArtifactConversational)
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestParseArtifactType(t *testing.T) {
	if _, ok := ParseArtifactType("coaching"); !ok {
		t.Fatalf("coaching should parse")
	}
	if _, ok := ParseArtifactType("conversational"); !ok {
		t.Fatalf("conversational should parse")
	}
	if _, ok := ParseArtifactType("karaoke"); ok {
		t.Fatalf("unknown tag should not parse")
	}
}
