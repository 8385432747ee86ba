package monitoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type HealthServer struct {
	monitor *Monitor
	port    string
	server  *http.Server
}

func NewHealthServer(monitor *Monitor, port string) *HealthServer {
	if port == "" || port == "0" {
		port = "8080"
	}
	return &HealthServer{
		monitor: monitor,
		port:    port,
	}
}

// Router exposes /health and /status.
func (h *HealthServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.healthHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/status", h.statusHandler).Methods(http.MethodGet)
	return r
}

func (h *HealthServer) Start() {
	h.server = &http.Server{
		Addr:              ":" + h.port,
		Handler:           handlers.LoggingHandler(os.Stdout, h.Router()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("Health check server starting on port %s", h.port)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Health server error: %v", err)
		}
	}()
}

func (h *HealthServer) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", h.monitor.GetStatusSummary())
}
