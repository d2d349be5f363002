// Package app provides application initialization and dependency injection.
//
// App is the container that wires configuration, Genkit, the database pool,
// the knowledge store, and the RAG context builder together. Setup
// initializes everything in dependency order; Close releases resources in
// reverse.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/figmant/figmant/internal/config"
	"github.com/figmant/figmant/internal/knowledge"
	"github.com/figmant/figmant/internal/rag"
)

// App is the core application container.
type App struct {
	// Configuration
	Config *config.Config

	// Core services
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	Builder   *rag.Builder

	// Cleanup hooks, called in reverse order by Close
	otelCleanup func()
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		slog.Info("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
