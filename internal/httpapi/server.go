// Package httpapi exposes the habit and interest services over REST.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/julianstephens/habitd/internal/counters"
	"github.com/julianstephens/habitd/internal/habits"
	"github.com/julianstephens/habitd/internal/interests"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/metrics"
)

const (
	defaultRate  = 10
	defaultBurst = 20
)

type Config struct {
	Habits    *habits.Service
	Interests *interests.Service
	Counters  *counters.Service
	// JWTSecret verifies HS256 bearer tokens
	JWTSecret string
	// RequestsPerSecond and Burst bound each owner; zero uses the defaults
	RequestsPerSecond float64
	Burst             int
}

type Server struct {
	habits    *habits.Service
	interests *interests.Service
	counters  *counters.Service
	secret    string
	limiter   *RateLimiter
	router    *mux.Router
}

func New(cfg Config) *Server {
	rps, burst := cfg.RequestsPerSecond, cfg.Burst
	if rps <= 0 {
		rps = defaultRate
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	s := &Server{
		habits:    cfg.Habits,
		interests: cfg.Interests,
		counters:  cfg.Counters,
		secret:    cfg.JWTSecret,
		limiter:   NewRateLimiter(rps, burst),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests, metrics.Middleware)

	r.HandleFunc("/api/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate, s.limiter.Handler)

	api.HandleFunc("/habits", s.handleCreateHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits", s.handleListHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits/tree", s.handleHabitTree).Methods(http.MethodGet)
	api.HandleFunc("/habits/{id}", s.handleGetHabit).Methods(http.MethodGet)
	api.HandleFunc("/habits/{id}", s.handleEditHabit).Methods(http.MethodPut)
	api.HandleFunc("/habits/{id}", s.handleDeleteHabit).Methods(http.MethodDelete)
	api.HandleFunc("/habits/{id}/done", s.handleMarkDone).Methods(http.MethodPost)
	api.HandleFunc("/habits/{id}/streak", s.handleStreak).Methods(http.MethodGet)

	api.HandleFunc("/interests/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/interests/options", s.handleOptions).Methods(http.MethodGet)
	api.HandleFunc("/interests", s.handleListInterests).Methods(http.MethodGet)
	api.HandleFunc("/interests/select", s.handleSelectInterests).Methods(http.MethodPost)
	api.HandleFunc("/interests/manage", s.handleManageInterests).Methods(http.MethodPost)
	api.HandleFunc("/interests/custom", s.handleAddCustomInterest).Methods(http.MethodPost)
	api.HandleFunc("/interests/{id}", s.handleRemoveInterest).Methods(http.MethodDelete)

	api.HandleFunc("/counters", s.handleCreateCounter).Methods(http.MethodPost)
	api.HandleFunc("/counters", s.handleListCounters).Methods(http.MethodGet)
	api.HandleFunc("/counters/{id}", s.handleGetCounter).Methods(http.MethodGet)
	api.HandleFunc("/counters/{id}", s.handleUpdateCounter).Methods(http.MethodPut)
	api.HandleFunc("/counters/{id}", s.handleDeleteCounter).Methods(http.MethodDelete)
	api.HandleFunc("/counters/{id}/reset", s.handleResetCounter).Methods(http.MethodPost)

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanup := time.NewTicker(10 * time.Minute)
	defer cleanup.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanup.C:
				s.limiter.Cleanup()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
