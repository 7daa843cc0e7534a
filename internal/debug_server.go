package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"team-relay/observability"
	"time"
)

type StatsProvider func() observability.MonitoringStats

// DebugHandler exposes the hub counters. /stats answers JSON, /healthz
// answers "OK".
func DebugHandler(statsProvider StatsProvider) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(statsProvider()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})
	return mux
}

// StartDebugServer serves DebugHandler on every interface until ctx ends.
func StartDebugServer(ctx context.Context, log *slog.Logger, port int, statsProvider StatsProvider) {
	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           DebugHandler(statsProvider),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Debug server available", "url", fmt.Sprintf("http://localhost:%d/stats", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Debug server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
