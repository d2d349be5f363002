package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
//
// Absence of required configuration (API key for the selected provider,
// usable Postgres settings) is a fatal startup error, never a
// degraded-mode fallback.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Provider validation
	validProviders := []string{ProviderGemini, ProviderOllama, ProviderOpenAI}
	if !slices.Contains(validProviders, c.Provider) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidProvider, c.Provider, validProviders)
	}

	// 2. API key validation per provider. Keys are read directly by the
	// genkit plugins; only presence is checked here.
	switch c.Provider {
	case ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
				"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
				ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required",
				ErrMissingAPIKey)
		}
	case ProviderOllama:
		if c.OllamaHost == "" {
			return fmt.Errorf("%w: ollama_host cannot be empty", ErrInvalidOllamaHost)
		}
	}

	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	// 3. PostgreSQL configuration validation
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	if c.PostgresPassword == "figmant_dev_password" {
		slog.Warn("Using default development password for PostgreSQL",
			"warning", "Change postgres_password in config.yaml for production deployments")
	}

	// Modern SSL modes only - exclude deprecated allow/prefer (MITM vulnerable)
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	// 4. Retrieval tunables validation
	return c.RAG.validate()
}

// validate checks the retrieval tunables.
// Thresholds must be in (0,1] and strictly descending so progressive
// relaxation terminates with the loosest threshold last.
func (r *RAGConfig) validate() error {
	if len(r.VectorThresholds) == 0 {
		return fmt.Errorf("%w: vector_thresholds cannot be empty", ErrInvalidRAGThresholds)
	}
	prev := float32(1.0)
	for i, t := range r.VectorThresholds {
		if t <= 0 || t > 1 {
			return fmt.Errorf("%w: threshold[%d]=%v must be in (0,1]", ErrInvalidRAGThresholds, i, t)
		}
		if t >= prev && i > 0 {
			return fmt.Errorf("%w: thresholds must be strictly descending, got %v", ErrInvalidRAGThresholds, r.VectorThresholds)
		}
		prev = t
	}

	limits := map[string]int{
		"vector_limit":   r.VectorLimit,
		"keyword_limit":  r.KeywordLimit,
		"category_limit": r.CategoryLimit,
		"fallback_limit": r.FallbackLimit,
		"max_entries":    r.MaxEntries,
	}
	for name, v := range limits {
		if v < 1 || v > 100 {
			return fmt.Errorf("%w: %s must be between 1 and 100, got %d", ErrInvalidRAGLimit, name, v)
		}
	}
	if r.MinEntries < 0 || r.MinEntries > r.MaxEntries {
		return fmt.Errorf("%w: min_entries must be between 0 and max_entries, got %d", ErrInvalidRAGLimit, r.MinEntries)
	}

	return nil
}
