// Package config loads process configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Generation
	LLMProvider     Provider
	LLMModel        string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OllamaHost      string
	AWSRegion       string
	BedrockModelID  string
	MaxTokens       int
	Temperature     float64
	MaxToolRounds   int

	// Embedding
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int

	// Ingestion / retrieval
	ChunkSize    int
	ChunkOverlap int
	MaxResults   int

	// Sessions
	MaxHistory int

	// Server
	ServerPort string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "coursegraph"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "courses"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     Provider(getEnv("COURSEGRAPH_LLM_PROVIDER", "anthropic")),
		LLMModel:        getEnv("COURSEGRAPH_LLM_MODEL", "claude-3-5-sonnet-20241022"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID:  getEnv("COURSEGRAPH_BEDROCK_MODEL", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		MaxTokens:       getEnvInt("COURSEGRAPH_MAX_TOKENS", 800),
		Temperature:     0,
		MaxToolRounds:   getEnvInt("COURSEGRAPH_MAX_TOOL_ROUNDS", 2),

		EmbedProvider:  Provider(getEnv("COURSEGRAPH_EMBED_PROVIDER", "ollama")),
		EmbedModel:     getEnv("COURSEGRAPH_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("COURSEGRAPH_EMBED_DIMENSION", 384),

		ChunkSize:    getEnvInt("COURSEGRAPH_CHUNK_SIZE", 800),
		ChunkOverlap: getEnvInt("COURSEGRAPH_CHUNK_OVERLAP", 100),
		MaxResults:   getEnvInt("COURSEGRAPH_MAX_RESULTS", 5),

		MaxHistory: getEnvInt("COURSEGRAPH_MAX_HISTORY", 2),

		ServerPort: getEnv("COURSEGRAPH_SERVER_PORT", "8000"),

		LogFile:  getEnv("COURSEGRAPH_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("COURSEGRAPH_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
