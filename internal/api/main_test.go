package api

import (
	"log/slog"
	"testing"

	"go.uber.org/goleak"
)

func testDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestMain verifies no goroutines leak across the package's tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// httptest servers share a poller goroutine
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
