package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.SurrealDBURL != "ws://localhost:8000/rpc" {
		t.Errorf("SurrealDBURL = %q", cfg.SurrealDBURL)
	}
	if cfg.LLMProvider != ProviderAnthropic {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.EmbedProvider != ProviderOllama {
		t.Errorf("EmbedProvider = %q", cfg.EmbedProvider)
	}
	if cfg.MaxToolRounds != 2 {
		t.Errorf("MaxToolRounds = %d, want 2", cfg.MaxToolRounds)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 100 {
		t.Errorf("chunking = %d/%d, want 800/100", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want 5", cfg.MaxResults)
	}
	if cfg.MaxHistory != 2 {
		t.Errorf("MaxHistory = %d, want 2", cfg.MaxHistory)
	}
	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.Temperature)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COURSEGRAPH_LLM_PROVIDER", "ollama")
	t.Setenv("COURSEGRAPH_MAX_TOOL_ROUNDS", "4")
	t.Setenv("COURSEGRAPH_MAX_TOKENS", "not-a-number")
	t.Setenv("COURSEGRAPH_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.LLMProvider != ProviderOllama {
		t.Errorf("LLMProvider = %q, want ollama", cfg.LLMProvider)
	}
	if cfg.MaxToolRounds != 4 {
		t.Errorf("MaxToolRounds = %d, want 4", cfg.MaxToolRounds)
	}
	if cfg.MaxTokens != 800 {
		t.Errorf("MaxTokens = %d, want default on malformed value", cfg.MaxTokens)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
