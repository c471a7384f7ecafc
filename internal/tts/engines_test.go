package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jeffcav/english-teacher-ai/internal/config"
)

func TestCoqui_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			w.WriteHeader(404)
			return
		}
		if got := r.URL.Query().Get("text"); got != "hello" {
			t.Fatalf("unexpected text %q", got)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFFfakewav"))
	}))
	defer srv.Close()

	c := NewCoquiClient(srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	audio, err := c.Synthesize(ctx, "hello", "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(audio) == 0 {
		t.Fatalf("expected non-empty audio")
	}
}

func TestCoqui_EmptyBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := NewCoquiClient(srv.URL, "")
	if _, err := c.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error on zero-length audio")
	}
}

func TestCoqui_MissingConfig(t *testing.T) {
	c := NewCoquiClient("", "")
	if _, err := c.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error with missing base url")
	}
	c2 := NewCoquiClient("http://localhost:5002", "")
	if _, err := c2.Synthesize(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error with empty text")
	}
}

// Smoke tests without API keys; remote engines should error immediately.
func TestElevenLabs_NoKey(t *testing.T) {
	e := NewElevenLabsClient("", "voice")
	if _, err := e.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error when api key missing")
	}
	if err := e.Healthcheck(context.Background()); err == nil {
		t.Fatalf("expected healthcheck error when api key missing")
	}
}

func TestDeepgram_NoKey(t *testing.T) {
	d := NewDeepgramClient("", "")
	if _, err := d.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}

func TestDeepgram_SynthesizeAgainstFake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speak" {
			w.WriteHeader(404)
			return
		}
		if got := r.URL.Query().Get("container"); got != "wav" {
			t.Fatalf("expected wav container, got %q", got)
		}
		_, _ = w.Write([]byte("RIFFfakewav"))
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	d := NewDeepgramClient("key", "")
	d.scheme = "http"
	d.host = u.Host
	audio, err := d.Synthesize(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(audio) == 0 {
		t.Fatalf("expected audio bytes")
	}
}

func TestEngines_Registry(t *testing.T) {
	engines := Engines(config.Config{CoquiURL: "http://localhost:5002"})
	for _, name := range []string{"coqui", "elevenlabs", "deepgram"} {
		e, ok := engines[name]
		if !ok {
			t.Fatalf("missing engine %q", name)
		}
		if e.Name() != name {
			t.Fatalf("engine name mismatch: %q", e.Name())
		}
	}
}
