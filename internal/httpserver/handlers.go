package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "embed"

	"github.com/labstack/echo/v4"

	"github.com/jeffcav/english-teacher-ai/internal/config"
	"github.com/jeffcav/english-teacher-ai/internal/domain"
	"github.com/jeffcav/english-teacher-ai/internal/store"
	"github.com/jeffcav/english-teacher-ai/internal/tts"
	"github.com/jeffcav/english-teacher-ai/internal/tutor"
)

//go:embed web/index.html
var indexHTML []byte

const (
	maxUploadBytes     = 20 << 20
	healthProbeTimeout = 3 * time.Second
)

// Pipeline runs one full orchestration pass.
type Pipeline interface {
	Process(ctx context.Context, in tutor.Input) (tutor.Result, error)
}

// HistoryStore is the read/clear slice of the session store.
type HistoryStore interface {
	Load(sessionID string) ([]domain.Turn, error)
	Clear(sessionID string) (bool, error)
}

// ArtifactOpener resolves the current audio artifact for a session+type.
type ArtifactOpener interface {
	Open(sessionID string, t store.ArtifactType) (string, error)
}

// Component is one independently reported collaborator health probe.
type Component struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handlers struct {
	pipeline   Pipeline
	history    HistoryStore
	artifacts  ArtifactOpener
	runtime    *config.Runtime
	components []Component
	engines    map[string]tts.Engine
}

func NewHandlers(pipeline Pipeline, history HistoryStore, artifacts ArtifactOpener, rt *config.Runtime, components []Component, engines map[string]tts.Engine) Handlers {
	return Handlers{
		pipeline:   pipeline,
		history:    history,
		artifacts:  artifacts,
		runtime:    rt,
		components: components,
		engines:    engines,
	}
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET("/", h.index)
	e.GET("/health", h.health)
	e.POST("/process", h.process)
	e.GET("/audio/:session_id", h.audio)
	e.GET("/conversation/:session_id", h.conversation)
	e.DELETE("/conversation/:session_id", h.clearConversation)
	e.GET("/config", h.getConfig)
	e.POST("/config", h.updateConfig)
}

type audioStatus struct {
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
}

type processResponse struct {
	SessionID              string      `json:"session_id"`
	UserTranscript         string      `json:"user_transcript"`
	CoachingFeedback       string      `json:"coaching_feedback"`
	ConversationalResponse string      `json:"conversational_response"`
	CoachingAudio          audioStatus `json:"coaching_audio"`
	ConversationalAudio    audioStatus `json:"conversational_audio"`
}

func (h Handlers) index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

func (h Handlers) process(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "audio file is required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "audio file too large"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to read upload"})
	}
	defer src.Close()
	audio, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to read upload"})
	}

	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		sessionID = c.QueryParam("session_id")
	}

	res, err := h.pipeline.Process(c.Request().Context(), tutor.Input{
		SessionID: sessionID,
		Filename:  fh.Filename,
		Audio:     audio,
	})
	if err != nil {
		var terr *tutor.Error
		if errors.As(err, &terr) && terr.Code == tutor.ErrorUnsupportedInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": terr.Reason})
		}
		c.Echo().Logger.Errorf("process failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "processing error"})
	}

	return c.JSON(http.StatusOK, processResponse{
		SessionID:              res.SessionID,
		UserTranscript:         res.Transcript,
		CoachingFeedback:       res.Coaching,
		ConversationalResponse: res.Conversational,
		CoachingAudio:          toAudioStatus(res.SessionID, store.ArtifactCoaching, res.CoachingAudio),
		ConversationalAudio:    toAudioStatus(res.SessionID, store.ArtifactConversational, res.ConversationalAudio),
	})
}

func toAudioStatus(sessionID string, t store.ArtifactType, r tutor.ArtifactResult) audioStatus {
	if !r.Available {
		return audioStatus{Error: r.Error}
	}
	return audioStatus{
		Available: true,
		URL:       fmt.Sprintf("/audio/%s?type=%s", sessionID, t),
	}
}

func (h Handlers) audio(c echo.Context) error {
	sessionID := c.Param("session_id")
	typeParam := c.QueryParam("type")
	if typeParam == "" {
		typeParam = string(store.ArtifactConversational)
	}
	tag, ok := store.ParseArtifactType(typeParam)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "type must be coaching or conversational"})
	}

	path, err := h.artifacts.Open(sessionID, tag)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "audio not found for session " + sessionID})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to open audio"})
	}
	return c.File(path)
}

func (h Handlers) conversation(c echo.Context) error {
	sessionID := c.Param("session_id")
	turns, err := h.history.Load(sessionID)
	if err != nil {
		// Corrupt record: report an empty history rather than failing.
		c.Echo().Logger.Errorf("history load failed for %s: %v", sessionID, err)
		turns = nil
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id":         sessionID,
		"conversation_count": len(turns),
		"history":            turns,
	})
}

func (h Handlers) clearConversation(c echo.Context) error {
	sessionID := c.Param("session_id")
	existed, err := h.history.Clear(sessionID)
	if err != nil {
		c.Echo().Logger.Errorf("history clear failed for %s: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to clear history"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "success",
		"session_id": sessionID,
		"existed":    existed,
		"message":    "Conversation history cleared",
	})
}

func (h Handlers) health(c echo.Context) error {
	// Only the currently selected synthesis engine is probed; configured
	// but inactive engines do not count against the overall status.
	probes := make([]Component, 0, len(h.components)+1)
	probes = append(probes, h.components...)
	name := h.runtime.Snapshot().TTSEngine
	if engine, ok := h.engines[name]; ok {
		probes = append(probes, Component{Name: "tts_" + name, Check: engine.Healthcheck})
	} else if name != "" {
		probes = append(probes, Component{
			Name:  "tts_" + name,
			Check: func(ctx context.Context) error { return fmt.Errorf("engine not configured") },
		})
	}

	components := map[string]string{}
	operational := true
	for _, comp := range probes {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
		err := comp.Check(ctx)
		cancel()
		if err != nil {
			components[comp.Name] = "error: " + err.Error()
			operational = false
		} else {
			components[comp.Name] = "available"
		}
	}
	status := "operational"
	if !operational {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":     status,
		"components": components,
	})
}

func (h Handlers) getConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.runtime.Snapshot())
}

func (h Handlers) updateConfig(c echo.Context) error {
	var s config.Settings
	if err := c.Bind(&s); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid config payload"})
	}
	if s.TTSEngine != "" {
		if _, ok := h.engines[s.TTSEngine]; !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "unknown tts engine: " + s.TTSEngine})
		}
	}
	updated := h.runtime.Update(s)
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "configuration updated",
		"settings": updated,
	})
}
