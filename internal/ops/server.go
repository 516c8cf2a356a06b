// Package ops exposes a read-only operational HTTP surface: health, run
// metadata, managed campaigns, and prometheus metrics. It never mutates
// state and carries no alerting.
package ops

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"AdsPilot/internal/store"
)

// NewServer builds the ops HTTP server on the given listen address.
func NewServer(addr string, st store.Store, metrics *Metrics, version string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		meta, err := st.Metadata(req.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		meta["version"] = version
		writeJSON(w, meta)
	})

	r.Get("/api/campaigns", func(w http.ResponseWriter, req *http.Request) {
		campaigns, err := st.Campaigns(req.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, campaigns)
	})

	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] ops server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] ops response encode: %v", err)
	}
}

func httpError(w http.ResponseWriter, err error) {
	log.Printf("[WARN] ops request failed: %v", err)
	http.Error(w, "store unavailable", http.StatusBadGateway)
}
