package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the Moodify backend.
type Config struct {
	Server    ServerConfig
	Deepgram  DeepgramConfig
	Audio     AudioConfig
	Favorites FavoritesConfig
	Voice     VoiceConfig
	Locale    string
}

type ServerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type FavoritesConfig struct {
	DBPath string
}

type VoiceConfig struct {
	SubmitDelay    time.Duration
	RulesPath      string
	ChunkSize      int
	StreamingGrace time.Duration
}

// Load resolves configuration from an optional .env file, environment
// variables, and sensible defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	dataDir := envOrDefault("MOODIFY_DATA_DIR", filepath.Join(home, ".config", "moodify"))

	cfg := Config{
		Server: ServerConfig{
			BaseURL: envOrDefault("MOODIFY_SERVER_URL", "http://localhost:5000"),
			Timeout: time.Duration(envOrDefaultInt("MOODIFY_SERVER_TIMEOUT_MS", 15000)) * time.Millisecond,
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("MOODIFY_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("MOODIFY_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("MOODIFY_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("MOODIFY_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("MOODIFY_CHANNELS", 1),
		},
		Favorites: FavoritesConfig{
			DBPath: envOrDefault("MOODIFY_FAVORITES_DB", filepath.Join(dataDir, "favorites.db")),
		},
		Voice: VoiceConfig{
			SubmitDelay:    time.Duration(envOrDefaultInt("MOODIFY_VOICE_SUBMIT_DELAY_MS", 500)) * time.Millisecond,
			RulesPath:      envOrDefault("MOODIFY_VOICE_RULES_FILE", filepath.Join(dataDir, "voice.rules")),
			ChunkSize:      envOrDefaultInt("MOODIFY_AUDIO_CHUNK_SIZE", 4096),
			StreamingGrace: time.Duration(envOrDefaultInt("MOODIFY_STREAMING_GRACE_MS", 1000)) * time.Millisecond,
		},
		Locale: envOrDefault("MOODIFY_LOCALE", "en"),
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Voice.ChunkSize < 256 {
		cfg.Voice.ChunkSize = 4096
	}
	if cfg.Voice.SubmitDelay < 0 {
		cfg.Voice.SubmitDelay = 0
	}
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = 15 * time.Second
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
