package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the static, process-wide settings read once at startup.
type Config struct {
	HTTPAddress string
	DataDir     string

	WhisperURL string

	OllamaURL   string
	OllamaModel string

	TTSEngine         string
	CoquiURL          string
	CoquiSpeaker      string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
	DeepgramKey       string
	DeepgramModel     string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	SupportedFormats []string

	TelegramBotToken string
	BackendURL       string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8000"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "feedback_storage"
	}

	whisperURL := os.Getenv("WHISPER_URL")
	if whisperURL == "" {
		whisperURL = "http://localhost:8787"
	}

	ollamaURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("LLM_NAME")
	if ollamaModel == "" {
		ollamaModel = "llama3"
	}

	engine := os.Getenv("TTS_ENGINE")
	if engine == "" {
		engine = "coqui"
	}
	coquiURL := os.Getenv("COQUI_URL")
	if coquiURL == "" {
		coquiURL = "http://localhost:5002"
	}

	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	deepgramModel := os.Getenv("DEEPGRAM_TTS_MODEL")
	if deepgramModel == "" {
		deepgramModel = "aura-2-thalia-en"
	}
	switch engine {
	case "elevenlabs":
		if elevenKey == "" {
			log.Println("Warning: ELEVENLABS_API_KEY not set - TTS will not work")
		}
	case "deepgram":
		if deepgramKey == "" {
			log.Println("Warning: DEEPGRAM_API_KEY not set - TTS will not work")
		}
	}

	formats := os.Getenv("SUPPORTED_AUDIO_FORMATS")
	if formats == "" {
		formats = "wav,mp3,m4a,flac,ogg"
	}

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:8000"
	}

	log.Printf("config: HTTP_ADDRESS=%s DATA_DIR=%s TTS_ENGINE=%s", addr, dataDir, engine)
	return Config{
		HTTPAddress:       addr,
		DataDir:           dataDir,
		WhisperURL:        whisperURL,
		OllamaURL:         ollamaURL,
		OllamaModel:       ollamaModel,
		TTSEngine:         engine,
		CoquiURL:          coquiURL,
		CoquiSpeaker:      os.Getenv("COQUI_SPEAKER_ID"),
		ElevenLabsKey:     elevenKey,
		ElevenLabsVoiceID: voiceID,
		DeepgramKey:       deepgramKey,
		DeepgramModel:     deepgramModel,
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseKey:       os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:    os.Getenv("SUPABASE_BUCKET"),
		SupportedFormats:  splitFormats(formats),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		BackendURL:        backendURL,
	}
}

// FormatSupported reports whether ext (without the leading dot) is in the
// accepted input container whitelist.
func (c Config) FormatSupported(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range c.SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

func splitFormats(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
