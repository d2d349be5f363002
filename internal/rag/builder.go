package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/figmant/figmant/internal/config"
	"github.com/figmant/figmant/internal/knowledge"
)

// Annotation is one user-placed marker on an uploaded design screenshot.
type Annotation struct {
	ID      string  `json:"id,omitempty"`
	Label   string  `json:"label,omitempty"`
	Comment string  `json:"comment,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// Request is the inbound context-building request.
type Request struct {
	UserPrompt       string       `json:"userPrompt"`
	ImageURLs        []string     `json:"imageUrls"`
	ImageAnnotations []Annotation `json:"imageAnnotations"`
	AnalysisID       string       `json:"analysisId"`
}

// EntryPayload is a knowledge entry as serialized in the response envelope.
type EntryPayload struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Source     string   `json:"source"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Similarity float32  `json:"similarity"`
}

// RetrievedKnowledge partitions the ranked entry set by category.
// The two slices are disjoint and together contain every retained entry.
type RetrievedKnowledge struct {
	RelevantPatterns   []EntryPayload `json:"relevantPatterns"`
	CompetitorInsights []EntryPayload `json:"competitorInsights"`
}

// Context is the complete RAG context envelope returned to the caller.
// Built fresh per request; never persisted here.
type Context struct {
	RetrievedKnowledge RetrievedKnowledge `json:"retrievedKnowledge"`
	EnhancedPrompt     string             `json:"enhancedPrompt"`
	ResearchCitations  []string           `json:"researchCitations"`
	IndustryContext    string             `json:"industryContext"`
	SearchTermsUsed    []string           `json:"searchTermsUsed"`
	TotalEntriesFound  int                `json:"totalEntriesFound"`
	BuildTimestamp     string             `json:"buildTimestamp"`
}

// Builder orchestrates the full pipeline: term extraction, multi-strategy
// retrieval, ranking, prompt composition, and envelope assembly.
//
// Builder is immutable after construction and safe for concurrent use.
type Builder struct {
	retriever *Retriever
	taxonomy  *Taxonomy
	cfg       config.RAGConfig
	logger    *slog.Logger

	// now is swappable for deterministic timestamps in tests.
	now func() time.Time
}

// NewBuilder creates a Builder over the given knowledge store.
// logger may be nil (defaults to slog.Default()).
func NewBuilder(store Searcher, cfg config.RAGConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	taxonomy := DefaultTaxonomy()

	return &Builder{
		retriever: NewRetriever(store, taxonomy, cfg, logger),
		taxonomy:  taxonomy,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Build runs the pipeline for one request.
//
// Per-term and per-strategy failures degrade gracefully inside the
// retriever; Build returns an error only when the store is effectively
// unreachable (nothing retrieved and the fallback failed too), in which case
// the caller emits the uniform error envelope.
func (b *Builder) Build(ctx context.Context, req Request) (*Context, error) {
	start := b.now()

	terms := ExtractTerms(req.UserPrompt, req.ImageAnnotations)

	results, termsUsed, err := b.retriever.RetrieveAll(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed for all strategies: %w", err)
	}

	ranked := Rank(results, b.cfg.MaxEntries)
	patterns, competitors := Partition(ranked)

	out := &Context{
		RetrievedKnowledge: RetrievedKnowledge{
			RelevantPatterns:   toPayloads(patterns),
			CompetitorInsights: toPayloads(competitors),
		},
		EnhancedPrompt:    Compose(req.UserPrompt, ranked),
		ResearchCitations: Citations(ranked),
		IndustryContext:   b.taxonomy.InferIndustry(req.UserPrompt),
		SearchTermsUsed:   termsUsed,
		TotalEntriesFound: len(ranked),
		BuildTimestamp:    b.now().UTC().Format(time.RFC3339),
	}

	b.logger.Info("rag context built",
		"analysis_id", req.AnalysisID,
		"terms", len(terms),
		"terms_used", len(termsUsed),
		"entries", len(ranked),
		"industry", out.IndustryContext,
		"duration", b.now().Sub(start))

	return out, nil
}

// Citations renders one human-readable citation per entry, preserving rank
// order so citation i references the entry at rank i.
func Citations(entries []knowledge.Result) []string {
	citations := make([]string, 0, len(entries))
	for _, e := range entries {
		citations = append(citations,
			fmt.Sprintf("%s - %s (%.1f%% match)", e.Entry.Title, e.Entry.Source, e.Similarity*100))
	}
	return citations
}

// toPayloads converts ranked results to their wire representation.
// Slices are always non-nil so JSON arrays are never null.
func toPayloads(results []knowledge.Result) []EntryPayload {
	payloads := make([]EntryPayload, 0, len(results))
	for _, r := range results {
		tags := r.Entry.Tags
		if tags == nil {
			tags = []string{}
		}
		payloads = append(payloads, EntryPayload{
			ID:         r.Entry.ID,
			Title:      r.Entry.Title,
			Content:    r.Entry.Content,
			Source:     r.Entry.Source,
			Category:   r.Entry.Category,
			Tags:       tags,
			Similarity: r.Similarity,
		})
	}
	return payloads
}
