// Package config merges the shell environment with the persistent user
// configuration in ~/.autodj/config.json. Deleting that directory
// resets the app to first-run state.
//
// Gemini API key priority (highest to lowest):
//  1. Saved in config.json (entered via --set-key)
//  2. GEMINI_API_KEY in the environment (the CLI loads .env first)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configDirName = ".autodj"

// Config holds the application configuration.
type Config struct {
	// Spotify app credentials (required)
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	// Cloud AI tier
	GeminiAPIKey string

	// Local AI tier (OpenAI-compatible endpoint, e.g. Ollama)
	LocalLLMBaseURL string
	LocalLLMAPIKey  string
	LocalLLMModel   string

	// Embedding backend for taste scoring
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string

	// Preference learning toggle
	LearningEnabled bool

	dir string
}

// fileConfig is the on-disk shape of config.json. Pointer fields
// distinguish "absent" from zero values on older files.
type fileConfig struct {
	GeminiAPIKey     string `json:"gemini_api_key"`
	LocalLLMBaseURL  string `json:"local_llm_base_url,omitempty"`
	LocalLLMModel    string `json:"local_llm_model,omitempty"`
	EmbeddingBaseURL string `json:"embedding_base_url,omitempty"`
	EmbeddingModel   string `json:"embedding_model,omitempty"`
	LearningEnabled  *bool  `json:"learning_enabled,omitempty"`
}

// Load reads the environment, then overlays config.json. A missing or
// unparseable file falls back to environment values alone.
func Load() *Config {
	cfg := &Config{
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", os.Getenv("SPOTIPY_CLIENT_ID")),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", os.Getenv("SPOTIPY_CLIENT_SECRET")),
		SpotifyRedirectURI:  getEnv("SPOTIFY_REDIRECT_URI", "http://127.0.0.1:8888/callback"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		LocalLLMBaseURL:     getEnv("LOCAL_LLM_BASE_URL", ""),
		LocalLLMAPIKey:      getEnv("LOCAL_LLM_API_KEY", ""),
		LocalLLMModel:       getEnv("LOCAL_LLM_MODEL", "llama3.2"),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingAPIKey:     getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		LearningEnabled:     getEnv("LEARNING_ENABLED", "true") != "false",
		dir:                 configDir(),
	}

	fc, err := readFile(cfg.filePath())
	if err != nil {
		return cfg
	}
	if strings.TrimSpace(fc.GeminiAPIKey) != "" {
		cfg.GeminiAPIKey = strings.TrimSpace(fc.GeminiAPIKey)
	}
	if fc.LocalLLMBaseURL != "" {
		cfg.LocalLLMBaseURL = fc.LocalLLMBaseURL
	}
	if fc.LocalLLMModel != "" {
		cfg.LocalLLMModel = fc.LocalLLMModel
	}
	if fc.EmbeddingBaseURL != "" {
		cfg.EmbeddingBaseURL = fc.EmbeddingBaseURL
	}
	if fc.EmbeddingModel != "" {
		cfg.EmbeddingModel = fc.EmbeddingModel
	}
	if fc.LearningEnabled != nil {
		cfg.LearningEnabled = *fc.LearningEnabled
	}
	return cfg
}

// IsConfigured reports whether a non-empty Gemini API key is available.
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// HasSpotifyCredentials reports whether both Spotify app credentials
// are present.
func (c *Config) HasSpotifyCredentials() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// HasLocalLLM reports whether a local model endpoint is configured.
func (c *Config) HasLocalLLM() bool {
	return c.LocalLLMBaseURL != ""
}

// SaveGeminiKey persists the key into config.json, preserving the rest
// of the file.
func (c *Config) SaveGeminiKey(key string) error {
	fc, err := readFile(c.filePath())
	if err != nil {
		fc = fileConfig{}
	}
	fc.GeminiAPIKey = strings.TrimSpace(key)

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(c.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	c.GeminiAPIKey = fc.GeminiAPIKey
	return nil
}

// TokenCachePath is where the Spotify OAuth token lives.
func (c *Config) TokenCachePath() string { return filepath.Join(c.dir, ".spotify_token") }

// PreferencesPath is where the listener profile lives.
func (c *Config) PreferencesPath() string { return filepath.Join(c.dir, "preferences.json") }

// EmbedCachePath is where the embedding cache database lives.
func (c *Config) EmbedCachePath() string { return filepath.Join(c.dir, "embeddings.db") }

func (c *Config) filePath() string { return filepath.Join(c.dir, "config.json") }

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}

func configDir() string {
	if dir := os.Getenv("AUTODJ_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
