package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeffcav/english-teacher-ai/internal/config"
	"github.com/jeffcav/english-teacher-ai/internal/httpserver"
	"github.com/jeffcav/english-teacher-ai/internal/llm"
	"github.com/jeffcav/english-teacher-ai/internal/store"
	"github.com/jeffcav/english-teacher-ai/internal/stt"
	"github.com/jeffcav/english-teacher-ai/internal/tts"
	"github.com/jeffcav/english-teacher-ai/internal/tutor"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()
	rt := config.NewRuntime(config.Settings{
		LLMModel:  cfg.OllamaModel,
		TTSEngine: cfg.TTSEngine,
	})

	sessions, err := store.NewSessionStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	var uploader store.Uploader
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		uploader = store.NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		log.Println("supabase artifact mirroring enabled")
	}
	artifacts, err := store.NewArtifactStore(cfg.DataDir, uploader)
	if err != nil {
		log.Fatalf("failed to open artifact store: %v", err)
	}

	whisper := stt.NewWhisperClient(cfg.WhisperURL)
	ollama := llm.NewOllamaClient(cfg.OllamaURL)
	engines := tts.Engines(cfg)

	orch := tutor.NewOrchestrator(cfg, rt, whisper, tutor.NewGenerator(ollama), engines, sessions, artifacts)

	// The selected synthesis engine is probed by the health handler itself.
	components := []httpserver.Component{
		{Name: "whisper", Check: whisper.Healthcheck},
		{Name: "ollama", Check: ollama.Healthcheck},
	}

	e := httpserver.New()
	httpserver.NewHandlers(orch, sessions, artifacts, rt, components, engines).Register(e)

	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		if err := e.Start(cfg.HTTPAddress); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("server stopped")
}
