package tutor

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeffcav/english-teacher-ai/internal/config"
	"github.com/jeffcav/english-teacher-ai/internal/domain"
	"github.com/jeffcav/english-teacher-ai/internal/store"
	"github.com/jeffcav/english-teacher-ai/internal/tts"
)

const (
	transcriptionTimeout = 15 * time.Second
	synthesisTimeout     = 15 * time.Second
)

// Transcriber converts audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// SessionStore is the slice of the store the orchestrator needs.
type SessionStore interface {
	Load(sessionID string) ([]domain.Turn, error)
	Append(sessionID string, turn domain.Turn) error
}

// ArtifactSaver persists one synthesized audio payload per session+type.
type ArtifactSaver interface {
	Save(ctx context.Context, sessionID string, t store.ArtifactType, audio []byte) error
}

// Input is one inbound request: audio bytes plus an optional session id.
type Input struct {
	SessionID string
	Filename  string
	Audio     []byte
}

// ArtifactResult reports one synthesis outcome. A failed synthesis carries
// an explicit error marker instead of aborting the request.
type ArtifactResult struct {
	Available bool
	Error     string
}

// Result is the externally visible outcome of one orchestration pass.
type Result struct {
	SessionID           string
	Transcript          string
	Coaching            string
	Conversational      string
	CoachingAudio       ArtifactResult
	ConversationalAudio ArtifactResult
}

// Orchestrator sequences the per-request pipeline:
// transcribe -> load history -> generate -> synthesize x2 -> persist.
// Only transcription failure is terminal; every later step degrades.
type Orchestrator struct {
	cfg       config.Config
	runtime   *config.Runtime
	stt       Transcriber
	gen       *Generator
	engines   map[string]tts.Engine
	sessions  SessionStore
	artifacts ArtifactSaver
}

func NewOrchestrator(
	cfg config.Config,
	rt *config.Runtime,
	stt Transcriber,
	gen *Generator,
	engines map[string]tts.Engine,
	sessions SessionStore,
	artifacts ArtifactSaver,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		runtime:   rt,
		stt:       stt,
		gen:       gen,
		engines:   engines,
		sessions:  sessions,
		artifacts: artifacts,
	}
}

// Process runs one full orchestration pass. Runtime settings are
// snapshotted here and never re-read, so a concurrent /config update can
// not be observed mid-pipeline.
func (o *Orchestrator) Process(ctx context.Context, in Input) (Result, error) {
	settings := o.runtime.Snapshot()

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if len(in.Audio) == 0 {
		return Result{}, newError(ErrorUnsupportedInput, "empty_audio", nil)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.Filename), "."))
	if !o.cfg.FormatSupported(ext) {
		return Result{}, newError(ErrorUnsupportedInput, "unsupported_audio_format", nil)
	}

	tctx, cancel := context.WithTimeout(ctx, transcriptionTimeout)
	transcript, err := o.stt.Transcribe(tctx, in.Filename, in.Audio)
	cancel()
	if err != nil {
		return Result{}, newError(ErrorTranscription, "transcription_error", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return Result{}, newError(ErrorTranscription, "empty_transcript", nil)
	}

	history, err := o.sessions.Load(sessionID)
	if err != nil {
		log.Printf("history load failed for session %s, continuing without context: %v", sessionID, err)
		history = nil
	}

	coaching, conversational := o.gen.Generate(ctx, settings.LLMModel, transcript, history)

	engine := o.engines[settings.TTSEngine]
	var (
		wg                       sync.WaitGroup
		coachingRes, converseRes ArtifactResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		coachingRes = o.synthesize(ctx, engine, settings.TTSVoice, sessionID, store.ArtifactCoaching, coaching)
	}()
	go func() {
		defer wg.Done()
		converseRes = o.synthesize(ctx, engine, settings.TTSVoice, sessionID, store.ArtifactConversational, conversational)
	}()
	wg.Wait()

	turn := domain.Turn{User: transcript, Coaching: coaching, Conversational: conversational}
	if err := o.sessions.Append(sessionID, turn); err != nil {
		log.Printf("history append failed for session %s, turn not persisted: %v", sessionID, err)
	}

	return Result{
		SessionID:           sessionID,
		Transcript:          transcript,
		Coaching:            coaching,
		Conversational:      conversational,
		CoachingAudio:       coachingRes,
		ConversationalAudio: converseRes,
	}, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, engine tts.Engine, voice, sessionID string, tag store.ArtifactType, text string) ArtifactResult {
	if engine == nil {
		return ArtifactResult{Error: "tts engine not configured"}
	}
	speakable := filterEnglish(text)
	if speakable == "" {
		return ArtifactResult{Error: "no speakable text after filtering"}
	}

	sctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()
	audio, err := engine.Synthesize(sctx, speakable, voice)
	if err != nil {
		log.Printf("%s synthesis failed for session %s: %v", tag, sessionID, err)
		return ArtifactResult{Error: "synthesis failed"}
	}
	if len(audio) == 0 {
		log.Printf("%s synthesis returned no audio for session %s", tag, sessionID)
		return ArtifactResult{Error: "synthesis produced no audio"}
	}
	if err := o.artifacts.Save(sctx, sessionID, tag, audio); err != nil {
		log.Printf("%s artifact save failed for session %s: %v", tag, sessionID, err)
		return ArtifactResult{Error: "artifact not stored"}
	}
	return ArtifactResult{Available: true}
}
