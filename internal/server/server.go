// Package server exposes the pipeline over HTTP for the rendering
// consumer and downstream tooling.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/citygrid/hexpoi/internal/config"
	"github.com/citygrid/hexpoi/internal/health"
	"github.com/citygrid/hexpoi/internal/logger"
	"github.com/citygrid/hexpoi/internal/metrics"
	imw "github.com/citygrid/hexpoi/internal/middleware"
	"github.com/citygrid/hexpoi/internal/model"
	"github.com/citygrid/hexpoi/internal/pipeline"
)

// Runner is the part of the pipeline the server needs.
type Runner interface {
	Run(ctx context.Context, place string) (*pipeline.Result, error)
}

type Server struct {
	cfg  config.Config
	pipe Runner
	log  zerolog.Logger
}

func New(cfg config.Config, pipe Runner, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, pipe: pipe, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(imw.Recover(s.log))
	r.Use(imw.Logging(s.log))
	r.Use(imw.CORS())

	r.Get("/healthz", health.Liveness())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/features", s.handleFeatures)
	r.Get("/grid.geojson", s.handleGrid)
	return r
}

// handleFeatures returns the collapsed feature table as JSON records,
// one object per hexagon with its id and count columns.
func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForRequest(w, r)
	if !ok {
		return
	}

	columns := res.Table.Columns()
	records := make([]map[string]any, 0, res.Table.Len())
	for _, id := range res.Table.IDs() {
		rec := make(map[string]any, len(columns)+1)
		rec["id"] = id
		for _, col := range columns {
			rec[col] = res.Table.Value(id, col)
		}
		records = append(records, rec)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		s.log.Error().Err(err).Msg("encode features response")
	}
}

// handleGrid returns the id-keyed geometry collection the choropleth
// consumer joins the table against.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(res.FeatureCollection()); err != nil {
		s.log.Error().Err(err).Msg("encode grid response")
	}
}

func (s *Server) runForRequest(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	place := strings.TrimSpace(r.URL.Query().Get("place"))
	if place == "" {
		place = s.cfg.Place
	}
	if place == "" {
		http.Error(w, "missing required parameter: place", http.StatusBadRequest)
		return nil, false
	}

	ctx := logger.WithPlace(r.Context(), place)
	res, err := s.pipe.Run(ctx, place)
	if err != nil {
		reqLog := logger.FromContext(ctx, s.log)
		reqLog.Error().Err(err).Msg("pipeline run failed")
		switch {
		case errors.Is(err, model.ErrEmptyResultSet), errors.Is(err, model.ErrAmbiguousBoundary):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, model.ErrInvalidGeometry), errors.Is(err, model.ErrCoordinateOrderMismatch):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "upstream failure", http.StatusBadGateway)
		}
		return nil, false
	}
	return res, true
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
