package config

import "sync"

// Settings are the per-turn tunables that may be re-assigned while the
// process is running. Changes apply to subsequently started turns only.
type Settings struct {
	LLMModel  string `json:"llm_name"`
	TTSEngine string `json:"tts_engine"`
	TTSVoice  string `json:"tts_voice"`
}

// Runtime holds the current Settings behind a lock. The orchestrator takes
// a Snapshot at the start of each pass and never reads Runtime again during
// that pass, so an update can not be observed mid-pipeline.
type Runtime struct {
	mu  sync.RWMutex
	cur Settings
}

func NewRuntime(s Settings) *Runtime {
	return &Runtime{cur: s}
}

// Snapshot returns a copy of the current settings.
func (r *Runtime) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur
}

// Update re-assigns the non-empty fields of s. Zero-valued fields keep
// their current value.
func (r *Runtime) Update(s Settings) Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.LLMModel != "" {
		r.cur.LLMModel = s.LLMModel
	}
	if s.TTSEngine != "" {
		r.cur.TTSEngine = s.TTSEngine
	}
	if s.TTSVoice != "" {
		r.cur.TTSVoice = s.TTSVoice
	}
	return r.cur
}
