package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
)

// Sentinel errors for configuration validation.
// Callers check with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidMaxRounds indicates the round budget is out of range.
	ErrInvalidMaxRounds = errors.New("invalid max rounds")

	// ErrInvalidChunking indicates chunk size/overlap are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is unknown.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidOllamaHost indicates the Ollama host is not a valid URL.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for consistency. It fails fast on
// the first problem so startup errors point at one actionable field.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for the gemini provider", ErrMissingAPIKey)
		}
	case ProviderOllama:
		if _, err := url.ParseRequestURI(c.OllamaHost); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidOllamaHost, c.OllamaHost)
		}
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidProvider, c.Provider, ProviderGemini, ProviderOllama)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.MaxTokens < 1 || c.MaxTokens > 65536 {
		return fmt.Errorf("%w: %d (expected 1-65536)", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.MaxRounds < 1 || c.MaxRounds > 10 {
		return fmt.Errorf("%w: %d (expected 1-10)", ErrInvalidMaxRounds, c.MaxRounds)
	}

	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size)", ErrInvalidChunking, c.ChunkOverlap)
	}

	if c.PostgresHost == "" {
		return ErrInvalidPostgresHost
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return ErrInvalidPostgresDBName
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	return nil
}
