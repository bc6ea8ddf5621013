// Package config resolves settings from an optional ini file and the
// environment. Precedence: defaults < ini file < environment; command-line
// flags override on top of the loaded Config in main.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultMinSegmentDuration = 1.0
	DefaultOllamaHost         = "127.0.0.1"
	DefaultOllamaPort         = 11434
	DefaultStartupTimeout     = 15 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
)

type Diarization struct {
	Model              string  // pyannote pipeline identifier
	AccessToken        string  // Hugging Face token for gated models
	MinSegmentDuration float64 // seconds; shorter detections are dropped
}

type Transcription struct {
	Backend string // whisper|openai
	Model   string

	// OpenAI-compatible endpoint settings, used when Backend is "openai".
	APIBase string
	APIKey  string
}

type Summarization struct {
	Model           string
	Host            string
	Port            int
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Config struct {
	LogLevel      string
	Diarization   Diarization
	Transcription Transcription
	Summarization Summarization
}

// Load builds a Config from defaults, an optional ini file and the
// environment. A missing file at path is not an error; an unreadable or
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Diarization: Diarization{
			Model:              "pyannote/speaker-diarization-3.1",
			MinSegmentDuration: DefaultMinSegmentDuration,
		},
		Transcription: Transcription{
			Backend: "whisper",
			Model:   "small.en",
			APIBase: "https://api.openai.com/v1",
		},
		Summarization: Summarization{
			Model:           "qwen2.5",
			Host:            DefaultOllamaHost,
			Port:            DefaultOllamaPort,
			StartupTimeout:  DefaultStartupTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			file, err := ini.Load(path)
			if err != nil {
				return nil, err
			}
			cfg.applyFile(file)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(file *ini.File) {
	general := file.Section("")
	c.LogLevel = general.Key("log_level").MustString(c.LogLevel)

	dia := file.Section("diarization")
	c.Diarization.Model = dia.Key("model").MustString(c.Diarization.Model)
	c.Diarization.MinSegmentDuration = dia.Key("min_segment_duration").MustFloat64(c.Diarization.MinSegmentDuration)

	tr := file.Section("transcription")
	c.Transcription.Backend = tr.Key("backend").MustString(c.Transcription.Backend)
	c.Transcription.Model = tr.Key("model").MustString(c.Transcription.Model)
	c.Transcription.APIBase = tr.Key("api_base").MustString(c.Transcription.APIBase)

	sum := file.Section("summarization")
	c.Summarization.Model = sum.Key("model").MustString(c.Summarization.Model)
	c.Summarization.Host = sum.Key("host").MustString(c.Summarization.Host)
	c.Summarization.Port = sum.Key("port").MustInt(c.Summarization.Port)
	c.Summarization.StartupTimeout = sum.Key("startup_timeout").MustDuration(c.Summarization.StartupTimeout)
	c.Summarization.ShutdownTimeout = sum.Key("shutdown_timeout").MustDuration(c.Summarization.ShutdownTimeout)
}

func (c *Config) applyEnv() {
	c.LogLevel = envOrDefault("DIASCRIBE_LOG_LEVEL", c.LogLevel)
	c.Diarization.AccessToken = envOrDefault("HUGGINGFACE_ACCESS_TOKEN", c.Diarization.AccessToken)
	c.Diarization.Model = envOrDefault("DIASCRIBE_DIARIZATION_MODEL", c.Diarization.Model)
	c.Diarization.MinSegmentDuration = envOrDefaultFloat("DIASCRIBE_MIN_SEGMENT_DURATION", c.Diarization.MinSegmentDuration)
	c.Transcription.Backend = envOrDefault("DIASCRIBE_TRANSCRIPTION_BACKEND", c.Transcription.Backend)
	c.Transcription.Model = envOrDefault("DIASCRIBE_TRANSCRIPTION_MODEL", c.Transcription.Model)
	c.Transcription.APIBase = envOrDefault("DIASCRIBE_TRANSCRIPTION_API_BASE", c.Transcription.APIBase)
	c.Transcription.APIKey = envOrDefault("OPENAI_API_KEY", c.Transcription.APIKey)
	c.Summarization.Model = envOrDefault("DIASCRIBE_SUMMARY_MODEL", c.Summarization.Model)
	c.Summarization.Host = envOrDefault("DIASCRIBE_OLLAMA_HOST", c.Summarization.Host)
	c.Summarization.Port = envOrDefaultInt("DIASCRIBE_OLLAMA_PORT", c.Summarization.Port)
	c.Summarization.StartupTimeout = envOrDefaultDuration("DIASCRIBE_OLLAMA_STARTUP_TIMEOUT", c.Summarization.StartupTimeout)
	c.Summarization.ShutdownTimeout = envOrDefaultDuration("DIASCRIBE_OLLAMA_SHUTDOWN_TIMEOUT", c.Summarization.ShutdownTimeout)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
