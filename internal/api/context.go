package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/figmant/figmant/internal/rag"
)

// maxRequestBody caps the inbound JSON body at 1 MiB.
const maxRequestBody = 1 << 20

// ContextBuilder builds a RAG context envelope for a request.
// Satisfied by *rag.Builder.
type ContextBuilder interface {
	Build(ctx context.Context, req rag.Request) (*rag.Context, error)
}

// contextHandler serves POST /api/v1/rag/context.
type contextHandler struct {
	builder ContextBuilder
	logger  *slog.Logger
}

// ragErrorEnvelope is the fixed-shape 500 response for a failed context
// build. Every array field is present and empty, never null, so clients can
// always parse the same schema.
type ragErrorEnvelope struct {
	Error              string                 `json:"error"`
	Details            string                 `json:"details"`
	RetrievedKnowledge rag.RetrievedKnowledge `json:"retrievedKnowledge"`
	EnhancedPrompt     string                 `json:"enhancedPrompt"`
	ResearchCitations  []string               `json:"researchCitations"`
	IndustryContext    string                 `json:"industryContext"`
	BuildTimestamp     string                 `json:"buildTimestamp"`
	SearchTermsUsed    []string               `json:"searchTermsUsed"`
	TotalEntriesFound  int                    `json:"totalEntriesFound"`
}

// newRAGErrorEnvelope builds the well-formed empty error envelope.
func newRAGErrorEnvelope(err error) ragErrorEnvelope {
	return ragErrorEnvelope{
		Error:   err.Error(),
		Details: "Failed to build enhanced RAG context",
		RetrievedKnowledge: rag.RetrievedKnowledge{
			RelevantPatterns:   []rag.EntryPayload{},
			CompetitorInsights: []rag.EntryPayload{},
		},
		EnhancedPrompt:    "",
		ResearchCitations: []string{},
		IndustryContext:   "general",
		BuildTimestamp:    time.Now().UTC().Format(time.RFC3339),
		SearchTermsUsed:   []string{},
		TotalEntriesFound: 0,
	}
}

// buildContext handles POST /api/v1/rag/context.
//
// Returns 200 with the full envelope on success (including degraded
// low-confidence retrievals), 400 for malformed request bodies, and 500 with
// the uniform empty envelope when the build fails outright.
func (h *contextHandler) buildContext(w http.ResponseWriter, r *http.Request) {
	var req rag.Request

	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body", h.logger)
		return
	}

	out, err := h.builder.Build(r.Context(), req)
	if err != nil {
		h.logger.Error("context build failed",
			"analysis_id", req.AnalysisID,
			"error", err)
		WriteJSON(w, http.StatusInternalServerError, newRAGErrorEnvelope(err))
		return
	}

	WriteJSON(w, http.StatusOK, out)
}
