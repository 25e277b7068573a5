package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardrelay/internal/domain"
	"boardrelay/internal/notify"
	"boardrelay/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Deps are the relay's collaborators, wired explicitly by the caller.
type Deps struct {
	Dispatcher notify.Dispatcher
	Enqueuer   usecase.Enqueuer
	Flusher    usecase.Flusher
	Registry   *prometheus.Registry
}

type Server struct {
	router *chi.Mux
	deps   Deps
}

func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	r.Post("/notifications", s.handleNotify)
	r.Post("/deliveries", s.handleEnqueue)
	r.Post("/flush", s.handleFlush)

	s.router = r
	return s
}

// handleNotify triggers a best-effort dispatch for one domain event. The
// response is always 202: notification failures are contained and logged by
// the dispatcher, never surfaced to the caller of the write.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var nc domain.NotifyContext
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results := s.deps.Dispatcher.Dispatch(r.Context(), nc)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]int{
		"recipients": len(results),
		"failed":     failed,
	})
}

type enqueueReq struct {
	BoardID      string `json:"board_id"`
	WebhookID    string `json:"webhook_id"`
	PayloadID    string `json:"payload_id"`
	PayloadEvent string `json:"payload_event"`
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := s.deps.Enqueuer.Enqueue(r.Context(), req.BoardID, req.WebhookID, req.PayloadID, req.PayloadEvent)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(d)
}

// handleFlush runs one flush pass immediately, outside the schedule.
func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Flusher.Flush(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(stats)
}

// Run serves the relay API on the given port until SIGINT/SIGTERM, then
// shuts down gracefully.
func (s *Server) Run(port int) {
	addr := fmt.Sprintf(":%d", port)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	<-done
	log.Info().Msg("Server stopped")
}
