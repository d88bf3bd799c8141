package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soulinitiatives/cleanup/internal/store"
	"github.com/soulinitiatives/cleanup/internal/validation"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) Problem {
	t.Helper()
	var p Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v (body %s)", err, w.Body.String())
	}
	return p
}

func TestWriteProblem_BodyFormat(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/cleanup_trash_entries", nil)

	WriteProblem(w, r, http.StatusUnauthorized, "Missing or invalid API key")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %v, want application/problem+json", ct)
	}

	p := decodeProblem(t, w)
	if p.Type != problemBaseURI+"unauthorized" {
		t.Errorf("type = %v", p.Type)
	}
	if p.Title != "Unauthorized" || p.Status != 401 {
		t.Errorf("title/status = %v/%v", p.Title, p.Status)
	}
	if p.Detail != "Missing or invalid API key" {
		t.Errorf("detail = %v", p.Detail)
	}
	if p.Instance != "/rest/v1/cleanup_trash_entries" {
		t.Errorf("instance = %v", p.Instance)
	}
}

func TestWriteProblem_UnknownStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteProblem(w, r, http.StatusTeapot, "short and stout")

	p := decodeProblem(t, w)
	if p.Type != problemBaseURI+"unknown" || p.Title != http.StatusText(http.StatusTeapot) {
		t.Errorf("unexpected fallback problem %+v", p)
	}
}

func TestWriteProblemWithErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/cleanup_location_entries", nil)

	WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
		{Field: "collected_at", Message: "must be an RFC 3339 timestamp with offset"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	var p ProblemWithErrors
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if p.Type != problemBaseURI+"validation-error" || p.Title != "Validation Error" {
		t.Errorf("unexpected problem %+v", p.Problem)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "collected_at" {
		t.Errorf("errors = %+v", p.Errors)
	}
}

// --- MapStoreError Tests ---

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		slug   string
	}{
		{"unknown table", fmt.Errorf("select: %w", store.ErrUnknownTable), http.StatusNotFound, "not-found"},
		{"unknown column", store.ErrUnknownColumn, http.StatusBadRequest, "bad-request"},
		{"invalid timestamp", store.ErrInvalidTimestamp, http.StatusBadRequest, "bad-request"},
		{"unknown session", fmt.Errorf("insert: %w", store.ErrUnknownSession), http.StatusConflict, "conflict"},
		{"no snapshot", store.ErrNoSnapshot, http.StatusServiceUnavailable, "service-unavailable"},
		{"unknown", errors.New("disk I/O error at /var/lib/cleanup.db"), http.StatusInternalServerError, "internal-error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/rest/v1/cleanup_sessions", nil)

			MapStoreError(w, r, tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			p := decodeProblem(t, w)
			if p.Type != problemBaseURI+tt.slug {
				t.Errorf("type = %v, want %v", p.Type, problemBaseURI+tt.slug)
			}
		})
	}
}

func TestMapStoreError_DoesNotLeakInternals(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/rest/v1/cleanup_sessions", nil)

	MapStoreError(w, r, errors.New("disk I/O error at /var/lib/cleanup.db"))

	if p := decodeProblem(t, w); p.Detail != "Internal Server Error" {
		t.Errorf("detail = %v, want 'Internal Server Error' (no leak)", p.Detail)
	}
}
