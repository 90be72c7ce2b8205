// Package server exposes a defparser.Registry over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness
//	GET  /parsers                 registered parsers and their record names
//	GET  /parsers/{name}/schema   JSON Schema projection of a parser
//	POST /parsers/{name}          parse the JSON body; 200 with the record,
//	                              422 with the issues, 400 when undecodable
//	GET  /metrics                 Prometheus metrics (when enabled)
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Elonsoft/defparser"
	"github.com/Elonsoft/defparser/internal/config"
	"github.com/Elonsoft/defparser/internal/metrics"
	"github.com/Elonsoft/defparser/middleware"
)

// Options configures the handler.
type Options struct {
	Logger       zerolog.Logger
	MaxBodyBytes int64
	// MetricsPath mounts the Prometheus endpoint; empty disables it.
	MetricsPath string
	// Registry backs the metrics endpoint. A fresh one is used when nil.
	Registry *prometheus.Registry
}

// Server serves the parsers of one registry. The registry can be replaced
// while serving; requests in flight keep the one they started with.
type Server struct {
	reg     atomic.Pointer[defparser.Registry]
	logger  zerolog.Logger
	maxBody int64
	metrics *metrics.Collector
	prom    *prometheus.Registry
	mpath   string
}

// New creates a server for reg.
func New(reg *defparser.Registry, opts Options) *Server {
	prom := opts.Registry
	if prom == nil {
		prom = prometheus.NewRegistry()
	}
	s := &Server{
		logger:  opts.Logger,
		maxBody: opts.MaxBodyBytes,
		metrics: metrics.New(prom),
		prom:    prom,
		mpath:   opts.MetricsPath,
	}
	s.SetRegistry(reg)
	return s
}

// SetRegistry swaps the registry served by s.
func (s *Server) SetRegistry(reg *defparser.Registry) {
	s.reg.Store(reg)
	s.metrics.ParsersDefined.Set(float64(len(reg.Parsers())))
}

// Registry returns the registry currently served.
func (s *Server) Registry() *defparser.Registry { return s.reg.Load() }

// Router returns the HTTP handler.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/parsers", s.listParsers)
	r.Get("/parsers/{name}/schema", s.parserSchema)
	r.Post("/parsers/{name}", s.parse)
	if s.mpath != "" {
		r.Handle(s.mpath, promhttp.HandlerFor(s.prom, promhttp.HandlerOpts{}))
	}
	return r
}

type parserInfo struct {
	Name        string   `json:"name"`
	Operation   string   `json:"operation"`
	Definitions []string `json:"definitions"`
}

func (s *Server) listParsers(w http.ResponseWriter, _ *http.Request) {
	ps := s.Registry().Parsers()
	out := make([]parserInfo, 0, len(ps))
	for _, p := range ps {
		info := parserInfo{Name: p.Name(), Operation: p.Operation()}
		for _, d := range p.Definitions() {
			info.Definitions = append(info.Definitions, d.Name)
		}
		out = append(out, info)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"parsers": out})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*defparser.Parser, bool) {
	name := chi.URLParam(r, "name")
	p, ok := s.Registry().Parser(name)
	if !ok {
		middleware.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "unknown parser " + strconv.Quote(name)})
	}
	return p, ok
}

func (s *Server) parserSchema(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p.JSONSchema())
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	start := time.Now()
	rec, err := middleware.Parse(w, r, p, s.maxBody)
	elapsed := time.Since(start)
	if err != nil {
		iss, isIssues := defparser.AsIssues(err)
		result := metrics.ResultError
		codes := make([]string, 0, len(iss))
		if isIssues {
			result = metrics.ResultInvalid
			for _, it := range iss {
				codes = append(codes, it.Code)
			}
		}
		s.metrics.ObserveParse(p.Name(), result, elapsed, codes)
		s.logger.Debug().Str("parser", p.Name()).Int("issues", len(iss)).Err(err).Msg("parse rejected")
		middleware.WriteError(w, err)
		return
	}
	s.metrics.ObserveParse(p.Name(), metrics.ResultOK, elapsed, nil)
	middleware.WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(status), elapsed)
		s.logger.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully, giving
// outstanding requests cfg.ShutdownTimeout to complete.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Int("parsers", len(s.Registry().Parsers())).Msg("server starting")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutdown requested")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Error().Err(err).Dur("timeout", cfg.ShutdownTimeout).Msg("graceful shutdown did not complete")
			return srv.Close()
		}
		s.logger.Info().Msg("server stopped gracefully")
		return nil
	}
}
