package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, read from the environment.
type Config struct {
	Models     ModelsConfig
	Classifier ClassifierConfig
	Scoring    ScoringConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Database   DatabaseConfig
}

// ModelsConfig points at the local ONNX model files. Empty paths are
// valid configuration: the corresponding stage degrades instead of
// failing.
type ModelsConfig struct {
	FaceDetectorPath string // SSD face detector ONNX model
	AttributePath    string // demographic attribute ONNX model
	OrtLibraryPath   string // onnxruntime shared library (optional)
}

// ClassifierConfig selects the general classifier backing.
type ClassifierConfig struct {
	Provider string // "clip" (default), "openai" or "gemini"
}

// ScoringConfig configures the CLIP embedding sidecar.
type ScoringConfig struct {
	URL string // defaults to http://localhost:8000
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

// DatabaseConfig configures the optional Postgres run store.
type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Models: ModelsConfig{
			FaceDetectorPath: os.Getenv("FACE_DETECTOR_MODEL"),
			AttributePath:    os.Getenv("ATTRIBUTE_MODEL"),
			OrtLibraryPath:   os.Getenv("ONNXRUNTIME_LIB"),
		},
		Classifier: ClassifierConfig{
			Provider: envString("CLASSIFIER_PROVIDER", "clip"),
		},
		Scoring: ScoringConfig{
			URL: os.Getenv("SCORING_URL"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
	}
}
