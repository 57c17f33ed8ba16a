// Package api serves stored studies and metrics over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/relaycoord/api/studies"
	"github.com/kilianp07/relaycoord/core/results"
	"github.com/kilianp07/relaycoord/infra/logger"
)

// NewMux mounts the study API under /api/studies and g under /metrics.
func NewMux(store results.Store, token string, g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	h := studies.NewHandler(store, token)
	mux.Handle("/api/studies", h)
	mux.Handle("/api/studies/", h)
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Serve runs the HTTP server on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	log := logger.New("api")
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving studies on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
