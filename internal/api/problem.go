package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soulinitiatives/cleanup/internal/store"
	"github.com/soulinitiatives/cleanup/internal/validation"
)

// problemBaseURI prefixes every problem type URI.
const problemBaseURI = "https://cleanup.soulinitiatives.org/errors/"

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusUnauthorized: {
		typeURI: problemBaseURI + "unauthorized",
		title:   "Unauthorized",
	},
	http.StatusBadRequest: {
		typeURI: problemBaseURI + "bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: problemBaseURI + "not-found",
		title:   "Not Found",
	},
	http.StatusMethodNotAllowed: {
		typeURI: problemBaseURI + "method-not-allowed",
		title:   "Method Not Allowed",
	},
	http.StatusConflict: {
		typeURI: problemBaseURI + "conflict",
		title:   "Conflict",
	},
	http.StatusRequestEntityTooLarge: {
		typeURI: problemBaseURI + "payload-too-large",
		title:   "Payload Too Large",
	},
	http.StatusUnprocessableEntity: {
		typeURI: problemBaseURI + "validation-error",
		title:   "Validation Error",
	},
	http.StatusTooManyRequests: {
		typeURI: problemBaseURI + "rate-limit",
		title:   "Too Many Requests",
	},
	http.StatusInternalServerError: {
		typeURI: problemBaseURI + "internal-error",
		title:   "Internal Server Error",
	},
	http.StatusServiceUnavailable: {
		typeURI: problemBaseURI + "service-unavailable",
		title:   "Service Unavailable",
	},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt = struct {
			typeURI string
			title   string
		}{
			typeURI: problemBaseURI + "unknown",
			title:   http.StatusText(status),
		}
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	pt := problemTypes[http.StatusUnprocessableEntity]

	p := ProblemWithErrors{
		Problem: Problem{
			Type:     pt.typeURI,
			Title:    pt.title,
			Status:   http.StatusUnprocessableEntity,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapStoreError converts store errors to Problem Details responses.
func MapStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrUnknownTable):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrUnknownColumn):
		WriteProblem(w, r, http.StatusBadRequest, "Unknown column in select")
	case errors.Is(err, store.ErrInvalidTimestamp):
		WriteProblem(w, r, http.StatusBadRequest, "collected_at must be an RFC 3339 timestamp")
	case errors.Is(err, store.ErrUnknownSession):
		WriteProblem(w, r, http.StatusConflict, "Session does not exist")
	case errors.Is(err, store.ErrNoSnapshot):
		WriteProblem(w, r, http.StatusServiceUnavailable, "No snapshot available")
	default:
		// Never expose internal error details to client
		slog.Error("store operation failed",
			"component", "api",
			"path", r.URL.Path,
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
