package config

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mrwolf/kocicka/internal/db"
	"github.com/mrwolf/kocicka/internal/llm"
)

// Server configures the narration relay.
type Server struct {
	Port         string `env:"KOCICKA_PORT"`
	PlatformPort string `env:"PORT" envDefault:"5000"`

	Provider     string `env:"KOCICKA_LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"KOCICKA_GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OllamaURL    string `env:"KOCICKA_OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel  string `env:"KOCICKA_OLLAMA_MODEL" envDefault:"qwen2.5:7b"`

	GenerationTimeout time.Duration `env:"KOCICKA_GENERATION_TIMEOUT" envDefault:"30s"`

	// ClientToken, when set, is required as a bearer token on generation endpoints.
	ClientToken string `env:"KOCICKA_CLIENT_TOKEN"`
	// RateLimit is requests per minute per client address; 0 disables limiting.
	RateLimit int `env:"KOCICKA_RATE_LIMIT" envDefault:"60"`
}

// Client configures the on-device session.
type Client struct {
	BackendURL    string        `env:"KOCICKA_BACKEND_URL" envDefault:"http://localhost:5000"`
	ClientToken   string        `env:"KOCICKA_CLIENT_TOKEN"`
	DBPath        string        `env:"KOCICKA_DB_PATH" envDefault:"kocicka.db"`
	DBDriver      string        `env:"KOCICKA_DB_DRIVER" envDefault:"sqlite"`
	DecayInterval time.Duration `env:"KOCICKA_DECAY_INTERVAL" envDefault:"60s"`

	NarrationTimeout time.Duration `env:"KOCICKA_NARRATION_TIMEOUT" envDefault:"10s"`
}

// LoadServer reads the relay configuration from the environment and an optional .env file.
func LoadServer() (*Server, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port == "" {
		cfg.Port = cfg.PlatformPort
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Server) validate() error {
	switch c.Provider {
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.Provider)
		}
	case llm.ProviderOllama:
		if _, err := url.ParseRequestURI(c.OllamaURL); err != nil {
			return fmt.Errorf("KOCICKA_OLLAMA_URL is invalid: %w", err)
		}
	default:
		return fmt.Errorf("KOCICKA_LLM_PROVIDER must be %q or %q, got %q", llm.ProviderGemini, llm.ProviderOllama, c.Provider)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("KOCICKA_GENERATION_TIMEOUT must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("KOCICKA_RATE_LIMIT must not be negative")
	}
	return nil
}

// AuthRequired reports whether generation endpoints need a bearer token.
func (c *Server) AuthRequired() bool {
	return c.ClientToken != ""
}

// TokenValid reports whether token matches the configured client token.
func (c *Server) TokenValid(token string) bool {
	if c.ClientToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.ClientToken)) == 1
}

// LoadClient reads the session configuration from the environment and an optional .env file.
func LoadClient() (*Client, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Client) validate() error {
	u, err := url.ParseRequestURI(c.BackendURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("KOCICKA_BACKEND_URL is invalid: %q", c.BackendURL)
	}
	if c.DBPath == "" {
		return fmt.Errorf("KOCICKA_DB_PATH is required")
	}
	if c.DBDriver != db.DriverCGO && c.DBDriver != db.DriverPureGo {
		return fmt.Errorf("KOCICKA_DB_DRIVER must be %q or %q, got %q", db.DriverPureGo, db.DriverCGO, c.DBDriver)
	}
	if c.DecayInterval <= 0 {
		return fmt.Errorf("KOCICKA_DECAY_INTERVAL must be positive")
	}
	if c.NarrationTimeout <= 0 {
		return fmt.Errorf("KOCICKA_NARRATION_TIMEOUT must be positive")
	}
	return nil
}

// loadDotEnv loads .env from the working directory. Variables already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
