package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PreviewDuration != 8*time.Second {
		t.Fatalf("unexpected preview duration: %v", cfg.PreviewDuration)
	}
	if cfg.MilestonePause != time.Second {
		t.Fatalf("unexpected milestone pause: %v", cfg.MilestonePause)
	}
	if cfg.DuckFade != 500*time.Millisecond {
		t.Fatalf("unexpected duck fade: %v", cfg.DuckFade)
	}
	if cfg.DuckRatio != 0.3 {
		t.Fatalf("unexpected duck ratio: %v", cfg.DuckRatio)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("unexpected default backend: %v", cfg.DBBackend)
	}
}

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("BRAGI_VENUE_NAME", "The Rusty Anchor")
	t.Setenv("BRAGI_PREVIEW_DURATION_MS", "5000")
	t.Setenv("BRAGI_TTS_URL", "http://tts:5002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.VenueName != "The Rusty Anchor" {
		t.Fatalf("unexpected venue name: %q", cfg.VenueName)
	}
	if cfg.PreviewDuration != 5*time.Second {
		t.Fatalf("unexpected preview duration: %v", cfg.PreviewDuration)
	}
	if cfg.TTSURL != "http://tts:5002" {
		t.Fatalf("unexpected tts url: %q", cfg.TTSURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "BRAGI_DB_BACKEND", "oracle"},
		{"zero preview", "BRAGI_PREVIEW_DURATION_MS", "0"},
		{"duck ratio above one", "BRAGI_DUCK_RATIO", "1.5"},
		{"zero min songs", "BRAGI_MIN_SONG_COUNT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected load to fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadProductionRequiresSigningKey(t *testing.T) {
	t.Setenv("BRAGI_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config load to fail without signing key")
	}

	t.Setenv("BRAGI_JWT_SIGNING_KEY", "supersecret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected production config load with signing key to succeed: %v", err)
	}
	if cfg.JWTSigningKey != "supersecret" {
		t.Fatalf("unexpected jwt signing key: %q", cfg.JWTSigningKey)
	}
}
