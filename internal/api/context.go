package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soulinitiatives/cleanup/internal/store"
)

// tableContextKey is the context key for the resolved table name.
type tableContextKey struct{}

// ErrNoTableInContext indicates no table was resolved for the request.
var ErrNoTableInContext = errors.New("no table in context")

// WithTable returns a new context with the table name attached.
func WithTable(ctx context.Context, table string) context.Context {
	return context.WithValue(ctx, tableContextKey{}, table)
}

// TableFromContext extracts the table name from the context.
func TableFromContext(ctx context.Context) (string, error) {
	t, ok := ctx.Value(tableContextKey{}).(string)
	if !ok || t == "" {
		return "", ErrNoTableInContext
	}
	return t, nil
}

// TableMiddleware resolves the {table} URL parameter against the known
// tables. Unknown tables are answered with 404 before any handler runs.
func TableMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := chi.URLParam(r, "table")
		if _, err := store.Columns(table); err != nil {
			WriteProblem(w, r, http.StatusNotFound, "Unknown table")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTable(r.Context(), table)))
	})
}
