package knowledge

import "time"

// CategoryCompetitorInsights is the category that partitions entries into
// the competitor insights bucket of the response envelope.
const CategoryCompetitorInsights = "competitor-insights"

// Entry is one retrievable unit of reference knowledge.
// Content is immutable after creation; the retrieval pipeline never writes.
type Entry struct {
	ID        string    // Globally unique identifier
	Title     string    // Short human-readable label
	Content   string    // Free-text body (the retrievable knowledge)
	Source    string    // Attribution string
	Category  string    // Open-ended tag, e.g. "accessibility"
	Tags      []string  // Free-text keywords
	CreatedAt time.Time // Creation timestamp
}

// Result pairs an Entry with its query-time similarity score.
// Similarity is in [0,1] and is computed, not persisted: vector matches
// carry the cosine score from the search, non-vector strategies stamp
// constant scores in the rag layer.
type Result struct {
	Entry      Entry
	Similarity float32
}
