package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adithya-search/boolsearch/pkg/health"
	"github.com/adithya-search/boolsearch/pkg/middleware"
)

// StartServer starts the metrics/health sidecar HTTP server and returns a
// shutdown function.
func StartServer(port int, m *Metrics, checker *health.Checker) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health/live", checker.LiveHandler())
	mux.HandleFunc("/health/ready", checker.ReadyHandler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1>boolsearch sidecar</h1><ul>`+
			`<li><a href="/metrics">/metrics</a></li>`+
			`<li><a href="/health/live">/health/live</a></li>`+
			`<li><a href="/health/ready">/health/ready</a></li>`+
			`</ul></body></html>`)
	})

	handler := middleware.Metrics(m)(middleware.Timeout(5 * time.Second)(mux))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("sidecar server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("sidecar server error", "error", err)
		}
	}()

	return server.Shutdown
}
