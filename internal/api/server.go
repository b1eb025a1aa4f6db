package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"solocraft/internal/engine"
)

// Server exposes the Service over the JSON routes the web client uses.
type Server struct {
	svc    *engine.Service
	log    *zap.Logger
	router *mux.Router
}

func NewServer(svc *engine.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, log: log.Named("api"), router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router.PathPrefix("/api").Subrouter()
	r.Use(s.logRequests)

	r.HandleFunc("/user-progress", s.handleUserProgress).Methods(http.MethodGet)
	r.HandleFunc("/missions", s.handleListMissions).Methods(http.MethodGet)
	r.HandleFunc("/active-debts", s.handleActiveDebts).Methods(http.MethodGet)
	r.HandleFunc("/cleared-debts", s.handleClearedDebts).Methods(http.MethodGet)
	r.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	r.HandleFunc("/current-project", s.handleCurrentProject).Methods(http.MethodGet)

	r.HandleFunc("/create-mission", s.handleCreateMission).Methods(http.MethodPost)
	r.HandleFunc("/complete-mission", s.handleCompleteMission).Methods(http.MethodPost)
	r.HandleFunc("/fail-mission", s.handleFailMission).Methods(http.MethodPost)
	r.HandleFunc("/delete-mission", s.handleDeleteMission).Methods(http.MethodPost)
	r.HandleFunc("/use-help-ticket", s.handleUseTicket(engine.TicketHelp)).Methods(http.MethodPost)
	r.HandleFunc("/use-tutorial-ticket", s.handleUseTicket(engine.TicketTutorial)).Methods(http.MethodPost)
	r.HandleFunc("/write-insight", s.handleWriteInsight).Methods(http.MethodPost)

	r.HandleFunc("/create-project", s.handleCreateProject).Methods(http.MethodPost)
	r.HandleFunc("/update-project", s.handleUpdateProject).Methods(http.MethodPost)
	r.HandleFunc("/delete-project", s.handleDeleteProject).Methods(http.MethodPost)
	r.HandleFunc("/set-current-project", s.handleSetCurrentProject).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		s.log.Info("server stopped")
		return nil
	}
}
