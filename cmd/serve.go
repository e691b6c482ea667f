package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/company-intel/internal/config"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/report"
	"github.com/sells-group/company-intel/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, config.ModeServe)
		if err != nil {
			return err
		}
		defer env.Close()

		mgr := session.NewManager(env.Pipeline, cfg.SessionTTL())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(mgr, cfg.Server.AllowedOrigins, cfg.Export.Format),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		// Graceful shutdown
		g.Go(func() error {
			<-gCtx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		// Idle session pruning
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case now := <-ticker.C:
					mgr.Prune(now)
				}
			}
		})

		return g.Wait()
	},
}

// newRouter builds the HTTP API over mgr.
func newRouter(mgr *session.Manager, origins []string, defaultFormat string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &sessionHandlers{mgr: mgr, defaultFormat: defaultFormat}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.delete)
			r.Post("/search", h.search)
			r.Post("/analyze", h.analyze)
			r.Post("/deep", h.deep)
			r.Post("/reset", h.reset)
			r.Get("/downloads", h.downloads)
			r.Get("/downloads/{name}", h.download)
		})
	})

	return r
}

type sessionHandlers struct {
	mgr           *session.Manager
	defaultFormat string
}

func (h *sessionHandlers) create(w http.ResponseWriter, _ *http.Request) {
	s := h.mgr.Create()
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *sessionHandlers) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.mgr.List()})
}

func (h *sessionHandlers) get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *sessionHandlers) search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Company string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Company == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company is required"})
		return
	}
	if _, err := s.Search(r.Context(), req.Company); err != nil && !errors.Is(err, model.ErrNoSources) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) analyze(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if _, err := s.Analyze(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) deep(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if _, err := s.Deepen(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) downloads(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	dl, ok := h.collect(w, r, s)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloads": dl})
}

func (h *sessionHandlers) download(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	dl, ok := h.collect(w, r, s)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	for _, d := range dl {
		if d.Name != name {
			continue
		}
		w.Header().Set("Content-Type", d.MIME)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.FileName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(d.Data)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "download not found"})
}

func (h *sessionHandlers) collect(w http.ResponseWriter, r *http.Request, s *session.Session) ([]report.Download, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	dl, err := s.Downloads(f)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return dl, true
}

func (h *sessionHandlers) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.mgr.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrWrongStage), errors.Is(err, session.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidLinkedInURL):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrRateLimited), errors.Is(err, model.ErrTerminal):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
