package tts

import (
	"context"

	"github.com/jeffcav/english-teacher-ai/internal/config"
)

// Engine is a one-shot text-to-speech synthesizer. Synthesize returns the
// complete audio payload for the given text; voice selects the engine's
// voice/model identifier and may be empty to use the engine default.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
	Healthcheck(ctx context.Context) error
}

// Engines builds every configured engine, keyed by name. The runtime
// tts_engine setting picks one of these per turn.
func Engines(cfg config.Config) map[string]Engine {
	out := map[string]Engine{}
	coqui := NewCoquiClient(cfg.CoquiURL, cfg.CoquiSpeaker)
	out[coqui.Name()] = coqui
	eleven := NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	out[eleven.Name()] = eleven
	deepgram := NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramModel)
	out[deepgram.Name()] = deepgram
	return out
}
