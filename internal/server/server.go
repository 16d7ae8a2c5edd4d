// Package server exposes HGVS lookups over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// Config holds HTTP server settings.
type Config struct {
	Addr         string
	CacheSize    int // descriptors kept in the lookup LRU
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8080",
		CacheSize:    10000,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server answers HGVS lookups from a loaded gene model.
type Server struct {
	cfg     Config
	builder *hgvs.Builder
	store   *duckdb.Store
	logger  *zap.Logger
	router  *gin.Engine
	lookups *lru.Cache[lookupKey, *hgvs.Descriptor]
	metrics *metrics
}

type lookupKey struct {
	chrom      string
	start, end int64
	ref, alt   string
}

// New creates a server. store may be nil, which disables the results
// endpoint.
func New(cfg Config, b *hgvs.Builder, store *duckdb.Store, logger *zap.Logger) (*Server, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	lookups, err := lru.New[lookupKey, *hgvs.Descriptor](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))

	s := &Server{
		cfg:     cfg,
		builder: b,
		store:   store,
		logger:  logger,
		router:  router,
		lookups: lookups,
		metrics: newMetrics(),
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/hgvs/:region", s.handleLookup)
		v1.GET("/transcripts/:id/results", s.handleTranscriptResults)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleLookup resolves chrom:pos or chrom:start-end, with optional ref
// and alt query parameters.
func (s *Server) handleLookup(c *gin.Context) {
	chrom, start, end, err := hgvs.ParseRegion(c.Param("region"))
	if err != nil {
		s.metrics.lookups.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := lookupKey{chrom, start, end, strings.ToUpper(c.Query("ref")), strings.ToUpper(c.Query("alt"))}

	d, ok := s.lookups.Get(key)
	if !ok {
		d, err = s.builder.Describe(key.chrom, key.start, key.end, key.ref, key.alt)
		if err != nil {
			s.logger.Warn("lookup failed", zap.String("region", c.Param("region")), zap.Error(err))
			s.metrics.lookups.WithLabelValues("error").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		s.lookups.Add(key, d)
	}

	s.metrics.lookups.WithLabelValues("ok").Inc()
	s.metrics.cores.Observe(float64(d.Len()))
	c.JSON(http.StatusOK, NewLookupResponse(d))
}

func (s *Server) handleTranscriptResults(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result store configured"})
		return
	}
	results, err := s.store.SearchByTranscript(c.Param("id"))
	if err != nil {
		s.logger.Error("search results", zap.String("transcript", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]ResultJSON, 0, len(results))
	for _, r := range results {
		out = append(out, ResultJSON{
			Chrom: r.Chrom, Pos: r.Pos, Ref: r.Ref, Alt: r.Alt,
			Core: CoreJSON{
				Transcript: r.TranscriptID,
				Gene:       r.GeneName,
				HGVSc:      r.HGVSc,
				Start:      newLocationJSON(r.Start),
				End:        endLocation(r.End, r.HasEnd),
			},
		})
	}
	c.JSON(http.StatusOK, out)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")))
	}
}

type metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	cores    prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibe_hgvs_lookups_total",
			Help: "HGVS lookups by outcome.",
		}, []string{"outcome"}),
		cores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vibe_hgvs_lookup_cores",
			Help:    "Transcript cores per successful lookup.",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}),
	}
	m.registry.MustRegister(m.lookups, m.cores)
	return m
}
