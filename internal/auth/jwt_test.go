/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	secret := []byte("test-secret")

	token, err := Issue(secret, "operator", "The Anchor", "host", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Parse(secret, token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "operator" {
		t.Errorf("subject = %q, want operator", claims.Subject)
	}
	if claims.Venue != "The Anchor" {
		t.Errorf("venue = %q, want The Anchor", claims.Venue)
	}
	if claims.Role != "host" {
		t.Errorf("role = %q, want host", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Issue([]byte("secret-a"), "operator", "", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse([]byte("secret-b"), token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, "operator", "", "", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(secret, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, "operator", "", "host", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotClaims *Claims
	handler := Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("accepts bearer token", func(t *testing.T) {
		gotClaims = nil
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/start", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotClaims == nil || gotClaims.Role != "host" {
			t.Fatalf("claims not propagated: %+v", gotClaims)
		}
	})

	t.Run("rejects missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/start", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("allows query token only for events upgrade", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/ws?token="+token, nil)
		req.Header.Set("Upgrade", "websocket")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		req = httptest.NewRequest(http.MethodPost, "/api/v1/session/start?token="+token, nil)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("query token on non-events path: status = %d, want 401", rec.Code)
		}
	})
}
