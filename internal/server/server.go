/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, audio and the control API
// into one runnable process.
package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/friendsincode/bragi_bingo/internal/announce"
	"github.com/friendsincode/bragi_bingo/internal/api"
	"github.com/friendsincode/bragi_bingo/internal/audio"
	"github.com/friendsincode/bragi_bingo/internal/cache"
	"github.com/friendsincode/bragi_bingo/internal/cards"
	"github.com/friendsincode/bragi_bingo/internal/catalog"
	"github.com/friendsincode/bragi_bingo/internal/config"
	"github.com/friendsincode/bragi_bingo/internal/db"
	"github.com/friendsincode/bragi_bingo/internal/events"
	"github.com/friendsincode/bragi_bingo/internal/sequencer"
	"github.com/friendsincode/bragi_bingo/internal/telemetry"
	"github.com/friendsincode/bragi_bingo/internal/tts"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	db    *gorm.DB
	cache *cache.Cache
	bus   *events.Bus
	seq   *sequencer.Sequencer
	api   *api.API
}

func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.MetricsMiddleware)
	// A round can legitimately run for minutes (milestones + previews), so
	// the advance endpoint and the events WebSocket skip the timeout.
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(30 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" || r.URL.Path == "/api/v1/session/advance" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           otelhttp.NewHandler(srv.router, "bragi-bingo-api"),
		ReadHeaderTimeout: 15 * time.Second,
		// The events WebSocket and long-running advance requests manage
		// their own deadlines.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.MetricsBind != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", telemetry.Handler())
		srv.metricsServer = &http.Server{
			Addr:              cfg.MetricsBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 15 * time.Second,
		}
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := db.RegisterCallbacks(database); err != nil {
		return fmt.Errorf("register database callbacks: %w", err)
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	poolGaugeDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-poolGaugeDone:
				return
			case <-ticker.C:
				db.UpdateConnectionMetrics(database)
			}
		}
	}()
	s.DeferClose(func() error { close(poolGaugeDone); return nil })

	s.cache = cache.New(cache.Config{
		RedisAddr:      s.cfg.RedisAddr,
		RedisPassword:  s.cfg.RedisPassword,
		RedisDB:        s.cfg.RedisDB,
		AITTL:          cache.DefaultAITTL,
		DisableOnError: true,
	}, s.logger)
	s.DeferClose(s.cache.Close)

	var provider catalog.Provider
	if s.cfg.PoolURL != "" {
		provider = catalog.NewHTTPProvider(s.cfg.PoolURL, s.logger)
	} else {
		provider = catalog.NewDBProvider(database, s.logger)
	}

	scripts := announce.DefaultScripts()
	if s.cfg.TemplatePackPath != "" {
		loaded, err := announce.LoadTemplatePack(s.cfg.TemplatePackPath)
		if err != nil {
			return fmt.Errorf("load template pack: %w", err)
		}
		scripts = loaded
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selector := announce.NewSelector(rng, s.cfg.VenueName, scripts)
	announceClient := announce.NewClient(s.cfg.AnnouncementsURL, s.cfg.AIAnnouncementsURL, s.cache, s.logger)
	synth := tts.NewClient(s.cfg.TTSURL, s.logger)

	musicBed := audio.NewSoftChannel(1.0, nil)
	ducker := audio.NewDucker(musicBed, s.cfg.DuckFade, s.cfg.DuckRatio, s.logger)
	player := audio.NewGstPlayer(s.cfg.GStreamerBin, s.logger)

	var cardsClient *cards.Client
	if s.cfg.CardsURL != "" {
		cardsClient = cards.NewClient(s.cfg.CardsURL, s.logger)
	}

	s.seq = sequencer.New(s.cfg, sequencer.Deps{
		Catalog:  provider,
		Announce: announceClient,
		Selector: selector,
		Synth:    synth,
		Player:   player,
		Ducker:   ducker,
		Cards:    cardsClient,
		Bus:      s.bus,
		Rand:     rng,
	}, s.logger)

	s.api = api.New(database, []byte(s.cfg.JWTSigningKey), s.seq, provider, s.bus, s.logger)
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Handle("/metrics", telemetry.Handler())
	s.api.Routes(s.router)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer returns the standalone metrics listener, or nil when the
// metrics bind is disabled.
func (s *Server) MetricsServer() *http.Server {
	return s.metricsServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
