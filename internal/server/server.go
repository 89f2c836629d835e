package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/assembler"
	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/constellation"
	"github.com/jonathan/raveliquar/internal/observability"
	"github.com/jonathan/raveliquar/internal/scoring"
	"github.com/jonathan/raveliquar/internal/server/middleware"
	"github.com/jonathan/raveliquar/internal/server/ratelimit"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Config holds server configuration
type Config struct {
	Addr            string
	CORSOrigin      string
	RankTopN        int
	NormalizeTarget float64
	RateLimit       *ratelimit.Config // nil disables rate limiting
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Store     Store
	Catalog   *catalog.Store // must already be loaded
	Assembler *assembler.Assembler // nil builds one over the catalog archetypes
	JWT       *JWTService
	AdminKeys middleware.KeyVerifier
	Logger    *zap.Logger
	Registry  *prometheus.Registry // nil uses a fresh registry
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	store      Store
	catalog    *catalog.Store
	layouts    *constellation.Cache
	assembler  *assembler.Assembler
	evaluator  scoring.Evaluator
	jwt        *JWTService
	adminKeys  middleware.KeyVerifier
	limiter    *ratelimit.Limiter
	metrics    *observability.Metrics
	registry   *prometheus.Registry
	logger     *zap.Logger
	validate   *validator.Validate
	corsOrigin string
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Catalog == nil:
		return nil, errors.New("server: catalog is required")
	case deps.JWT == nil:
		return nil, errors.New("server: JWT service is required")
	case deps.AdminKeys == nil:
		return nil, errors.New("server: admin key config is required")
	}

	s := &Server{
		store:      deps.Store,
		catalog:    deps.Catalog,
		layouts:    constellation.NewCache(deps.Catalog.All(), constellation.DefaultCacheSize),
		assembler:  deps.Assembler,
		evaluator:  scoring.Evaluator{Target: cfg.NormalizeTarget, TopN: cfg.RankTopN},
		jwt:        deps.JWT,
		adminKeys:  deps.AdminKeys,
		registry:   deps.Registry,
		logger:     deps.Logger,
		validate:   newValidator(),
		corsOrigin: cfg.CORSOrigin,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.assembler == nil {
		s.assembler = assembler.New(assembler.CatalogLibrary(s.catalog.List(catalog.KindArchetype)), assembler.WithLogger(s.logger))
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	s.metrics = observability.NewMetrics(s.registry)
	if cfg.RateLimit != nil {
		s.limiter = ratelimit.NewLimiter(cfg.RateLimit)
	}

	s.handler = s.withLogging(s.withRecover(s.withCORS(s.withRateLimit(s.routes()))))
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names in validation messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *Server) routes() http.Handler {
	bearer := middleware.AuthMiddleware(s.jwt.AsTokenValidator())
	admin := middleware.AdminMiddleware(s.adminKeys)
	either := middleware.EitherMiddleware(s.jwt.AsTokenValidator(), s.adminKeys)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Auth
	mux.HandleFunc("POST /api/auth/code", s.handleRedeemCode)
	mux.Handle("POST /api/auth/consent", bearer(http.HandlerFunc(s.handleConsent)))

	// Profiles
	mux.Handle("GET /api/profiles", admin(http.HandlerFunc(s.handleListProfiles)))
	mux.Handle("POST /api/profiles", admin(http.HandlerFunc(s.handleCreateProfile)))
	mux.Handle("GET /api/profiles/{id}", either(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("PUT /api/profiles/{id}", bearer(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("DELETE /api/profiles/{id}", admin(http.HandlerFunc(s.handleDeleteProfile)))

	// Catalog
	mux.HandleFunc("GET /api/archetypes", s.handleListArchetypes)
	mux.HandleFunc("GET /api/archetypes/{id}", s.handleGetArchetype)
	mux.HandleFunc("GET /api/luminaries", s.handleListLuminaries)
	mux.HandleFunc("GET /api/shadows", s.handleListShadows)
	mux.HandleFunc("GET /api/constellation", s.handleConstellation)

	// Mini-tests
	mux.HandleFunc("GET /api/mini-tests", s.handleListMiniTests)
	mux.HandleFunc("GET /api/mini-tests/{id}", s.handleGetMiniTest)
	mux.Handle("POST /api/mini-tests/{id}/submit", bearer(http.HandlerFunc(s.handleSubmit)))
	mux.Handle("GET /api/progress/{profileId}", either(http.HandlerFunc(s.handleGetProgress)))

	// Runs and results
	mux.Handle("POST /api/runs/{runId}/complete", bearer(http.HandlerFunc(s.handleCompleteRun)))
	mux.Handle("GET /api/results/{profileId}", either(http.HandlerFunc(s.handleListResults)))

	// Admin
	mux.Handle("POST /api/admin/access-codes", admin(http.HandlerFunc(s.handleCreateAccessCode)))

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.stopBackground()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.stopBackground()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.stopBackground()
}

func (s *Server) stopBackground() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs each request and records request metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", clientID(r)),
		)
	})
}

// withRecover converts handler panics into 500 responses
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.Error("panic in handler",
					zap.Any("panic", v),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				s.fail(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.AdminKeyHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(info.RetryAfter.Seconds()))))
			}
			s.logger.Warn("rate limit exceeded",
				zap.String("client", clientID(r)),
				zap.String("path", r.URL.Path),
			)
			s.fail(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; forwarded headers are not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
