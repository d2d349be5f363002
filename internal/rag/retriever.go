package rag

import (
	"context"
	"log/slog"

	"github.com/figmant/figmant/internal/config"
	"github.com/figmant/figmant/internal/knowledge"
)

// Searcher defines the knowledge-store operations the retriever needs.
// Satisfied by *knowledge.Store; defined here so the pipeline is testable
// with in-memory fakes.
type Searcher interface {
	// Embed converts text to an embedding vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// SearchByVector runs similarity search with a pre-computed vector
	SearchByVector(ctx context.Context, vec []float32, threshold float32, limit int32) ([]knowledge.Result, error)

	// SearchKeyword runs case-insensitive substring search
	SearchKeyword(ctx context.Context, term string, limit int32) ([]knowledge.Result, error)

	// SearchCategory fetches entries of one category
	SearchCategory(ctx context.Context, category string, limit int32) ([]knowledge.Result, error)

	// Recent fetches the most recently created entries
	Recent(ctx context.Context, limit int32) ([]knowledge.Result, error)
}

// Retriever runs the multi-strategy retrieval chain for search terms.
//
// Strategies are tried in fixed priority order per term, short-circuiting on
// the first strategy yielding at least one result: vector search with
// progressive threshold relaxation, then keyword substring search, then
// category lookup via the static taxonomy. A global most-recent fallback
// fires when all terms together produce too few entries.
//
// The chain prefers "some context, clearly marked low-confidence" over "no
// context": non-vector matches carry constant low scores so downstream
// ranking and callers can discount them.
type Retriever struct {
	store    Searcher
	taxonomy *Taxonomy
	cfg      config.RAGConfig
	logger   *slog.Logger
}

// NewRetriever creates a retriever over the given store and taxonomy.
// logger may be nil (defaults to slog.Default()).
func NewRetriever(store Searcher, taxonomy *Taxonomy, cfg config.RAGConfig, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}

	return &Retriever{
		store:    store,
		taxonomy: taxonomy,
		cfg:      cfg,
		logger:   logger,
	}
}

// strategy is one step of the per-term retrieval chain.
// A strategy returns its matches or an error; errors are logged by the
// caller and treated as zero results.
type strategy struct {
	name string
	run  func(ctx context.Context, term string, memo embedMemo) ([]knowledge.Result, error)
}

// embedMemo caches embeddings for the duration of one request, keyed by
// normalized term text. Repeated or overlapping terms embed once.
type embedMemo map[string][]float32

// RetrieveAll processes terms sequentially through the strategy chain and
// accumulates results as a pure fold (no shared mutable state beyond the
// per-request embedding memo).
//
// Returns the accumulated results and the subset of terms that produced at
// least one result. When the accumulated total is below the configured
// minimum, the global fallback contributes the most recent entries. The
// error is non-nil only when nothing was retrieved and the fallback itself
// failed, which indicates the store is unreachable.
func (r *Retriever) RetrieveAll(ctx context.Context, terms []string) ([]knowledge.Result, []string, error) {
	memo := make(embedMemo)

	results := make([]knowledge.Result, 0, r.cfg.MinEntries)
	termsUsed := make([]string, 0, len(terms))

	for _, term := range terms {
		found := r.retrieveTerm(ctx, term, memo)
		if len(found) == 0 {
			continue
		}
		results = append(results, found...)
		termsUsed = append(termsUsed, term)
	}

	if len(results) < r.cfg.MinEntries {
		fallback, err := r.fallback(ctx)
		if err != nil {
			if len(results) == 0 {
				return nil, nil, err
			}
			r.logger.Error("global fallback failed, proceeding with partial results",
				"retrieved", len(results), "error", err)
		}
		results = append(results, fallback...)
	}

	return results, termsUsed, nil
}

// retrieveTerm runs the strategy chain for one term, short-circuiting on the
// first strategy that yields results. Strategy failures are logged and
// treated as zero results so a degraded provider or store never aborts the
// whole request.
func (r *Retriever) retrieveTerm(ctx context.Context, term string, memo embedMemo) []knowledge.Result {
	for _, s := range r.strategies() {
		found, err := s.run(ctx, term, memo)
		if err != nil {
			r.logger.Warn("retrieval strategy failed",
				"strategy", s.name, "term", term, "error", err)
			continue
		}
		if len(found) > 0 {
			r.logger.Debug("retrieval strategy matched",
				"strategy", s.name, "term", term, "results", len(found))
			return found
		}
	}
	return nil
}

// strategies returns the retrieval chain in priority order.
func (r *Retriever) strategies() []strategy {
	return []strategy{
		{name: "vector", run: r.vectorStrategy},
		{name: "keyword", run: r.keywordStrategy},
		{name: "category", run: r.categoryStrategy},
	}
}

// vectorStrategy embeds the term once and relaxes the similarity threshold
// progressively, stopping at the first threshold with matches. Vector
// matches keep the cosine score from the search.
func (r *Retriever) vectorStrategy(ctx context.Context, term string, memo embedMemo) ([]knowledge.Result, error) {
	vec, ok := memo[term]
	if !ok {
		var err error
		vec, err = r.store.Embed(ctx, term)
		if err != nil {
			return nil, err
		}
		memo[term] = vec
	}

	for _, threshold := range r.cfg.VectorThresholds {
		found, err := r.store.SearchByVector(ctx, vec, threshold, int32(r.cfg.VectorLimit)) // #nosec G115 -- validated range 1-100
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	return nil, nil
}

// keywordStrategy matches the term as a case-insensitive substring of title,
// content, or tags. Matches carry a constant moderate score.
func (r *Retriever) keywordStrategy(ctx context.Context, term string, _ embedMemo) ([]knowledge.Result, error) {
	found, err := r.store.SearchKeyword(ctx, term, int32(r.cfg.KeywordLimit)) // #nosec G115 -- validated range 1-100
	if err != nil {
		return nil, err
	}
	return stampSimilarity(found, r.cfg.KeywordSimilarity), nil
}

// categoryStrategy maps the term to a category via the static taxonomy and
// fetches entries of that category. Matches carry a constant low score.
func (r *Retriever) categoryStrategy(ctx context.Context, term string, _ embedMemo) ([]knowledge.Result, error) {
	category, ok := r.taxonomy.CategoryFor(term)
	if !ok {
		return nil, nil
	}

	found, err := r.store.SearchCategory(ctx, category, int32(r.cfg.CategoryLimit)) // #nosec G115 -- validated range 1-100
	if err != nil {
		return nil, err
	}
	return stampSimilarity(found, r.cfg.CategorySimilarity), nil
}

// fallback fetches the most recent entries regardless of term, marked with
// the lowest confidence score.
func (r *Retriever) fallback(ctx context.Context) ([]knowledge.Result, error) {
	found, err := r.store.Recent(ctx, int32(r.cfg.FallbackLimit)) // #nosec G115 -- validated range 1-100
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		r.logger.Info("global fallback fired", "results", len(found))
	}
	return stampSimilarity(found, r.cfg.FallbackSimilarity), nil
}

// stampSimilarity assigns a constant strategy score to results from
// non-vector reads.
func stampSimilarity(results []knowledge.Result, score float32) []knowledge.Result {
	for i := range results {
		results[i].Similarity = score
	}
	return results
}
