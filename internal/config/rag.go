package config

// RAGConfig holds the retrieval pipeline tunables.
//
// The similarity thresholds and per-strategy scores are heuristic defaults
// carried over from production use. They are exposed as configuration so
// operators can recalibrate them without a rebuild; nothing in the pipeline
// assumes these exact values.
type RAGConfig struct {
	// VectorThresholds are tried in descending strictness order; the first
	// threshold returning at least one row wins.
	VectorThresholds []float32 `mapstructure:"vector_thresholds" json:"vector_thresholds"`

	// VectorLimit caps rows returned by a single vector search.
	VectorLimit int `mapstructure:"vector_limit" json:"vector_limit"`

	// KeywordLimit caps rows returned by keyword substring search.
	KeywordLimit int `mapstructure:"keyword_limit" json:"keyword_limit"`

	// KeywordSimilarity is the constant score assigned to keyword matches.
	KeywordSimilarity float32 `mapstructure:"keyword_similarity" json:"keyword_similarity"`

	// CategoryLimit caps rows returned by category lookup.
	CategoryLimit int `mapstructure:"category_limit" json:"category_limit"`

	// CategorySimilarity is the constant score assigned to category matches.
	CategorySimilarity float32 `mapstructure:"category_similarity" json:"category_similarity"`

	// FallbackLimit caps rows returned by the global most-recent fallback.
	FallbackLimit int `mapstructure:"fallback_limit" json:"fallback_limit"`

	// FallbackSimilarity is the constant score assigned to fallback entries.
	FallbackSimilarity float32 `mapstructure:"fallback_similarity" json:"fallback_similarity"`

	// MinEntries is the minimum total entries across all terms before the
	// global fallback fires.
	MinEntries int `mapstructure:"min_entries" json:"min_entries"`

	// MaxEntries is the final cap after dedup and ranking.
	MaxEntries int `mapstructure:"max_entries" json:"max_entries"`
}
