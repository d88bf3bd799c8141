package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soulinitiatives/cleanup/internal/store"
	"github.com/soulinitiatives/cleanup/internal/types"
	"github.com/soulinitiatives/cleanup/internal/validation"
	"github.com/soulinitiatives/cleanup/pkg/catalog"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

// Handler implements the API handlers
type Handler struct {
	store    store.Store
	apiKey   string
	version  string
	timezone string
}

// NewHandler creates a Handler. timezone is the analytics default when a
// request does not name one.
func NewHandler(s store.Store, apiKey, version, timezone string) *Handler {
	if timezone == "" {
		timezone = catalog.DefaultTimezone
	}
	return &Handler{
		store:    s,
		apiKey:   apiKey,
		version:  version,
		timezone: timezone,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	schema, err := h.store.SchemaVersion(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		SchemaVersion: schema,
		Stats:         *stats,
	})
}

// Insert handles POST /rest/v1/{table}. With "Prefer: return=representation"
// the stored row is returned in a one-element array.
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	table, err := TableFromContext(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, "Unknown table")
		return
	}

	var (
		stored any
		ok     bool
	)
	switch table {
	case catalog.TableSessions:
		stored, ok = createSession(w, r, h.store)
	case catalog.TableLocations:
		stored, ok = insertRecord(w, r, validation.ValidateLocationRecord, h.store.InsertLocation)
	case catalog.TableTrash:
		stored, ok = insertRecord(w, r, validation.ValidateTrashRecord, h.store.InsertTrash)
	case catalog.TableDestinations:
		stored, ok = insertRecord(w, r, validation.ValidateDestinationRecord, h.store.InsertDestination)
	case catalog.TableSurveys:
		stored, ok = insertRecord(w, r, validation.ValidateSurveyRecord, h.store.InsertSurvey)
	default:
		WriteProblem(w, r, http.StatusNotFound, "Unknown table")
		return
	}
	if !ok {
		return
	}

	slog.Info("submission stored",
		"component", "api",
		"action", "insert",
		"table", table,
		"request_id", GetRequestID(r.Context()),
	)

	if wantsRepresentation(r) {
		writeJSON(w, http.StatusCreated, []any{stored})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func createSession(w http.ResponseWriter, r *http.Request, s store.Store) (*types.Session, bool) {
	var body struct{}
	if !decodeJSON(w, r, &body, true) {
		return nil, false
	}
	sess, err := s.CreateSession(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return nil, false
	}
	return sess, true
}

// insertRecord decodes, validates and stores one record of type R.
func insertRecord[R any, E any](
	w http.ResponseWriter,
	r *http.Request,
	validate func(R) []validation.ValidationError,
	insert func(context.Context, R) (E, error),
) (E, bool) {
	var zero E
	var rec R
	if !decodeJSON(w, r, &rec, false) {
		return zero, false
	}
	if errs := validate(rec); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return zero, false
	}
	entry, err := insert(r.Context(), rec)
	if err != nil {
		MapStoreError(w, r, err)
		return zero, false
	}
	return entry, true
}

// Select handles GET /rest/v1/{table}?select=a,b&limit=n.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	table, err := TableFromContext(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, "Unknown table")
		return
	}

	q := r.URL.Query()
	var columns []string
	if sel := strings.TrimSpace(q.Get("select")); sel != "" {
		columns = strings.Split(sel, ",")
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	rows, err := h.store.SelectRows(r.Context(), table, columns, limit)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// RPC handles POST /rest/v1/rpc/{fn}. Only the analytics function exists.
func (h *Handler) RPC(w http.ResponseWriter, r *http.Request) {
	if fn := chi.URLParam(r, "fn"); fn != catalog.RPCAnalytics {
		WriteProblem(w, r, http.StatusNotFound, "Unknown function")
		return
	}

	var params cleanup.AnalyticsParams
	if !decodeJSON(w, r, &params, true) {
		return
	}

	var c validation.Collector
	period, err := cleanup.ParsePeriod(string(params.Period))
	if err != nil {
		c.Add(&validation.ValidationError{Field: "p_period", Message: "must be day, month or year"})
	}
	tz := params.Timezone
	if tz == "" {
		tz = h.timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.Add(&validation.ValidationError{Field: "p_tz", Message: "must be an IANA timezone name"})
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Invalid analytics parameters", c.Errors())
		return
	}

	rows, err := h.store.Analytics(r.Context(), period, loc)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
// With allowEmpty an empty body leaves dst untouched. On failure a problem
// response has been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return true
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteProblem(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("Body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
	return false
}

func wantsRepresentation(r *http.Request) bool {
	for _, v := range r.Header.Values("Prefer") {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "return=representation" {
				return true
			}
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
