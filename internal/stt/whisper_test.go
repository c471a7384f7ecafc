package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWhisper_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		_, _ = w.Write([]byte(`{"text":" I am very happy today "}`))
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := c.Transcribe(ctx, "audio.wav", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if got != "I am very happy today" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestWhisper_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status_non_2xx", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500); _, _ = w.Write([]byte("oops")) }},
		{"bad_json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("not-json")) }},
		{"engine_error", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewWhisperClient(srv.URL)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if _, err := c.Transcribe(ctx, "a.wav", nil); err == nil {
				t.Fatalf("expected error; got nil")
			}
		})
	}
}

func TestWhisper_NoBaseURL(t *testing.T) {
	c := NewWhisperClient("")
	if _, err := c.Transcribe(context.Background(), "a.wav", nil); err == nil {
		t.Fatalf("expected error with missing base url")
	}
	if err := c.Healthcheck(context.Background()); err == nil {
		t.Fatalf("expected healthcheck error with missing base url")
	}
}

func TestWhisper_Healthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(404)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()
	c := NewWhisperClient(srv.URL)
	if err := c.Healthcheck(context.Background()); err != nil {
		t.Fatalf("healthcheck: %v", err)
	}
}
