package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultSuggestThreshold = 0.9

// Config stores runtime configuration for both shells.
type Config struct {
	Deepgram   DeepgramConfig
	Audio      AudioConfig
	Rules      RulesConfig
	Vocabulary VocabularyConfig
	Session    SessionConfig
	Log        LogConfig
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
	ChunkSize       int
}

type RulesConfig struct {
	Path string
}

type VocabularyConfig struct {
	Path string
}

type SessionConfig struct {
	RestartDelay     time.Duration
	SuggestThreshold float64
}

type LogConfig struct {
	Level string
	File  string
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	configDir := filepath.Join(home, ".config", "laudo")

	cfg := Config{
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    envOrDefault("DEEPGRAM_LANGUAGE", "pt-BR"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("LAUDO_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("LAUDO_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("LAUDO_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("LAUDO_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("LAUDO_CHANNELS", 1),
			ChunkSize:       envOrDefaultInt("LAUDO_AUDIO_CHUNK_SIZE", 4096),
		},
		Rules: RulesConfig{
			Path: envOrDefault("LAUDO_RULES_FILE", filepath.Join(configDir, "substitutions.rules")),
		},
		Vocabulary: VocabularyConfig{
			Path: envOrDefault("LAUDO_VOCABULARY_FILE", filepath.Join(configDir, "vocabulary.yaml")),
		},
		Session: SessionConfig{
			RestartDelay:     time.Duration(envOrDefaultInt("LAUDO_RESTART_DELAY_MS", 0)) * time.Millisecond,
			SuggestThreshold: envOrDefaultFloat("LAUDO_SUGGEST_THRESHOLD", defaultSuggestThreshold),
		},
		Log: LogConfig{
			Level: envOrDefault("LAUDO_LOG_LEVEL", "info"),
			File:  strings.TrimSpace(os.Getenv("LAUDO_LOG_FILE")),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if cfg.Session.RestartDelay < 0 {
		cfg.Session.RestartDelay = 0
	}
	// zero disables suggestions; anything outside [0,1] is a typo
	if cfg.Session.SuggestThreshold < 0 || cfg.Session.SuggestThreshold > 1 {
		cfg.Session.SuggestThreshold = defaultSuggestThreshold
	}

	return cfg, nil
}

// DefaultLogFile is where the terminal shell logs when LAUDO_LOG_FILE is unset.
func DefaultLogFile() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "laudo", "laudo.log")
	}
	return filepath.Join(os.TempDir(), "laudo.log")
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

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
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
