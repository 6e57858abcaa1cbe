/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string

	DBBackend DatabaseBackend
	DBDSN     string

	// Session defaults shown to the operator and used for card generation.
	VenueName             string
	TargetDurationMinutes int
	SecondsPerSong        int
	MinSongCount          int

	// External collaborator endpoints. An empty PoolURL means the session
	// loads tracks from the local catalog table instead.
	PoolURL            string
	AnnouncementsURL   string
	AIAnnouncementsURL string
	TTSURL             string
	CardsURL           string

	// Template pack override for announcement scripts (YAML, optional).
	TemplatePackPath string

	// Playback timing.
	PreviewDuration time.Duration
	MilestonePause  time.Duration
	DuckFade        time.Duration
	DuckRatio       float64

	GStreamerBin string

	JWTSigningKey string

	// AI announcement cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Tracing configuration.
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("BRAGI_ENV", "development"),
		HTTPBind:    getEnv("BRAGI_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("BRAGI_HTTP_PORT", 8080),
		MetricsBind: getEnv("BRAGI_METRICS_BIND", "127.0.0.1:9000"),

		DBBackend: DatabaseBackend(getEnv("BRAGI_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:     getEnv("BRAGI_DB_DSN", "bragi.db"),

		VenueName:             getEnv("BRAGI_VENUE_NAME", "the venue"),
		TargetDurationMinutes: getEnvInt("BRAGI_TARGET_DURATION_MINUTES", 45),
		SecondsPerSong:        getEnvInt("BRAGI_SECONDS_PER_SONG", 30),
		MinSongCount:          getEnvInt("BRAGI_MIN_SONG_COUNT", 20),

		PoolURL:            getEnv("BRAGI_POOL_URL", ""),
		AnnouncementsURL:   getEnv("BRAGI_ANNOUNCEMENTS_URL", ""),
		AIAnnouncementsURL: getEnv("BRAGI_AI_ANNOUNCEMENTS_URL", ""),
		TTSURL:             getEnv("BRAGI_TTS_URL", "http://localhost:5002"),
		CardsURL:           getEnv("BRAGI_CARDS_URL", ""),

		TemplatePackPath: getEnv("BRAGI_TEMPLATE_PACK", ""),

		PreviewDuration: getEnvDurationMS("BRAGI_PREVIEW_DURATION_MS", 8000),
		MilestonePause:  getEnvDurationMS("BRAGI_MILESTONE_PAUSE_MS", 1000),
		DuckFade:        getEnvDurationMS("BRAGI_DUCK_FADE_MS", 500),
		DuckRatio:       getEnvFloat("BRAGI_DUCK_RATIO", 0.3),

		GStreamerBin: getEnv("BRAGI_GSTREAMER_BIN", "gst-launch-1.0"),

		JWTSigningKey: getEnv("BRAGI_JWT_SIGNING_KEY", ""),

		RedisAddr:     getEnv("BRAGI_REDIS_ADDR", ""),
		RedisPassword: getEnv("BRAGI_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("BRAGI_REDIS_DB", 0),

		TracingEnabled:    getEnvBool("BRAGI_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("BRAGI_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("BRAGI_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("BRAGI_DB_DSN must be provided")
	}

	if cfg.PreviewDuration <= 0 {
		return nil, fmt.Errorf("BRAGI_PREVIEW_DURATION_MS must be positive")
	}

	if cfg.DuckRatio <= 0 || cfg.DuckRatio > 1 {
		return nil, fmt.Errorf("BRAGI_DUCK_RATIO must be in (0, 1]")
	}

	if cfg.MinSongCount < 1 {
		return nil, fmt.Errorf("BRAGI_MIN_SONG_COUNT must be at least 1")
	}

	if strings.EqualFold(cfg.Environment, "production") && cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("BRAGI_JWT_SIGNING_KEY must be provided in production")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDurationMS reads an integer millisecond value.
func getEnvDurationMS(key string, defMS int) time.Duration {
	return time.Duration(getEnvInt(key, defMS)) * time.Millisecond
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
