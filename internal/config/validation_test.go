package config

import (
	"errors"
	"strings"
	"testing"
)

// validConfig returns a config that passes Validate with the ollama
// provider (no API key needed, keeps tests hermetic).
func validConfig() *Config {
	return &Config{
		Provider:        ProviderOllama,
		OllamaHost:      "http://localhost:11434",
		ModelName:       "llama3.3",
		EmbedderModel:   "nomic-embed-text",
		MaxTokens:       800,
		MaxRounds:       2,
		MaxHistory:      2,
		ChunkSize:       800,
		ChunkOverlap:    100,
		SearchTopK:      5,
		PostgresHost:    "localhost",
		PostgresPort:    5432,
		PostgresUser:    "coursewise",
		PostgresDBName:  "coursewise",
		PostgresSSLMode: "disable",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "claudia" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.MaxTokens = 0 },
			wantErr: ErrInvalidMaxTokens,
		},
		{
			name:    "zero max rounds",
			mutate:  func(c *Config) { c.MaxRounds = 0 },
			wantErr: ErrInvalidMaxRounds,
		},
		{
			name:    "overlap not below chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = 800 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "unknown ssl mode",
			mutate:  func(c *Config) { c.PostgresSSLMode = "maybe" },
			wantErr: ErrInvalidPostgresSSLMode,
		},
		{
			name:    "bad ollama host",
			mutate:  func(c *Config) { c.OllamaHost = "not a url" },
			wantErr: ErrInvalidOllamaHost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() on nil = %v, want ErrConfigNil", err)
	}
}

func TestPostgresConnectionString_QuotesPassword(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "p'ss word"

	dsn := cfg.PostgresConnectionString()
	want := `password='p\'ss word'`
	if !strings.Contains(dsn, want) {
		t.Errorf("DSN %q missing quoted password %q", dsn, want)
	}
}

func TestPostgresURL_EncodesCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "p@ss/word"

	u := cfg.PostgresURL()
	if !strings.Contains(u, "p%40ss%2Fword") {
		t.Errorf("URL %q should percent-encode password", u)
	}
	if !strings.Contains(u, "sslmode=disable") {
		t.Errorf("URL %q missing sslmode", u)
	}
}

func TestFullModelName(t *testing.T) {
	cfg := validConfig()
	if got := cfg.FullModelName(); got != "ollama/llama3.3" {
		t.Errorf("FullModelName() = %q, want ollama/llama3.3", got)
	}
	cfg.Provider = ProviderGemini
	cfg.ModelName = "gemini-2.5-flash"
	if got := cfg.FullModelName(); got != "googleai/gemini-2.5-flash" {
		t.Errorf("FullModelName() = %q, want googleai/gemini-2.5-flash", got)
	}
}
