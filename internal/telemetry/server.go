package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openashp/aerona3-bridge/internal/state"
)

// Server is the bridge's HTTP surface: /metrics for Prometheus,
// /healthz for liveness, /api/snapshot for the pull-based snapshot
// contract.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer wires the handlers. connState reports the transport state
// for the health payload; snapshot supplies the entity view.
func NewServer(addr string, m *Metrics, snapshot func() state.Snapshot,
	connState func() string, logger *slog.Logger) *Server {

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":     "ok",
			"connection": connState(),
		})
	})

	mux.HandleFunc("/api/snapshot", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, snapshot())
	})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("telemetry listening", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
