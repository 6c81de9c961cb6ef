package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config groups everything the server needs so main stays lean.
type Config struct {
	Addr        string
	LogLevel    string
	CORSOrigins []string

	// JWTSigningKey enables bearer auth on /api when non-empty.
	JWTSigningKey string

	// PostgresDSN backs the regulatory corpus and audit event stores. Empty
	// falls back to in-memory stores for local development.
	PostgresDSN string

	// RedisURL enables the retrieval cache. Empty disables caching.
	RedisURL      string
	RetrievalTTL  time.Duration
	RetrievalTopK int

	// Extraction collaborator (OpenAI-compatible chat completions).
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Collaborator calls are the only suspension points in the pipeline.
	CollaboratorTimeout  time.Duration
	MaxCollaboratorCalls int64

	DefaultCurrency string
}

// FromEnv builds a Config from environment variables. A local .env file is
// loaded first when present; real environment variables win.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        envOr("COREPORT_ADDR", ":8080"),
		LogLevel:    envOr("COREPORT_LOG_LEVEL", "info"),
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},

		JWTSigningKey: os.Getenv("COREPORT_JWT_SIGNING_KEY"),

		PostgresDSN: os.Getenv("COREPORT_POSTGRES_DSN"),

		RedisURL:      os.Getenv("COREPORT_REDIS_URL"),
		RetrievalTTL:  envDuration("COREPORT_RETRIEVAL_CACHE_TTL", 5*time.Minute),
		RetrievalTopK: envInt("COREPORT_RETRIEVAL_TOP_K", 5),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		CollaboratorTimeout:  envDuration("COREPORT_COLLABORATOR_TIMEOUT", 30*time.Second),
		MaxCollaboratorCalls: int64(envInt("COREPORT_MAX_COLLABORATOR_CALLS", 4)),

		DefaultCurrency: envOr("COREPORT_DEFAULT_CURRENCY", "GBP"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
