package config

import (
	"os"
	"strings"
)

// Config holds the application configuration. It is loaded once at
// startup and passed explicitly into every component, so nothing in
// the service depends on process-wide mutable state.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Analyzer LLM
	GeminiAPIKey  string // Google Gemini API key
	OpenAIAPIKey  string // OpenAI API key (alternative analyzer provider)
	AnalyzerModel string // Model used for prompt breakdown

	// Lyria / Vertex AI
	ProjectID string // GCP project hosting the Lyria endpoint
	Location  string // Vertex AI region (e.g. us-central1)

	// Audio output
	AudioDir string // Directory generated WAV files are written to

	// CORS
	AllowedOrigins []string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnalyzerModel:     getEnv("ANALYZER_MODEL", "gemini-2.5-flash"),
		ProjectID:         getEnv("PROJECT_ID", ""),
		Location:          getEnv("LOCATION", "us-central1"),
		AudioDir:          getEnv("AUDIO_DIR", "generated"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "*")),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

// HasAnalyzer reports whether any analyzer provider is configured.
func (c *Config) HasAnalyzer() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != ""
}

// HasGenerator reports whether the Lyria backend is configured.
func (c *Config) HasGenerator() bool {
	return c.ProjectID != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
