package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/soulinitiatives/cleanup/internal/types"
	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

const (
	DefaultSelectLimit = 5
	MaxSelectLimit     = 100
)

// tableColumns lists the selectable columns per table, in display order.
var tableColumns = map[string][]string{
	catalog.TableSessions: {"id", "created_at"},
	catalog.TableLocations: {
		"id", "session_id", "collected_at",
		"homestays", "locations", "homestay_bags", "homestay_kg", "location_bags", "location_kg",
		"total_bags_homestay", "total_kg_homestay", "total_bags_location", "total_kg_location",
		"created_at",
	},
	catalog.TableTrash: {
		"id", "session_id", "collected_at",
		"trash_types", "other_trash_label", "bags_kg", "totals_kg_by_type", "bags_count_by_type",
		"total_bags_trash", "total_kg_trash",
		"created_at",
	},
	catalog.TableDestinations: {
		"id", "session_id", "collected_at",
		"destination_details", "total_bags",
		"created_at",
	},
	catalog.TableSurveys: {
		"id", "session_id", "collected_at",
		"homestays", "locations", "trash_types",
		"homestay_bags", "homestay_kg", "location_bags", "location_kg", "trash_details",
		"total_bags_homestay", "total_kg_homestay", "total_bags_location", "total_kg_location", "total_kg_trash",
		"created_at",
	},
}

// jsonColumns hold encoded JSON and are returned as nested values.
var jsonColumns = map[string]bool{
	"homestays": true, "locations": true, "trash_types": true,
	"homestay_bags": true, "homestay_kg": true, "location_bags": true, "location_kg": true,
	"bags_kg": true, "totals_kg_by_type": true, "bags_count_by_type": true,
	"destination_details": true, "trash_details": true,
}

// Columns returns the selectable columns of table.
func Columns(table string) ([]string, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return slices.Clone(cols), nil
}

// ClampLimit applies the default and maximum select limits.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSelectLimit
	case limit > MaxSelectLimit:
		return MaxSelectLimit
	default:
		return limit
	}
}

// SelectRows returns the newest rows of table projected onto columns. An
// empty projection or "*" selects every column. Table and column names are
// checked against an allow-list before they reach SQL.
func (s *SQLiteStore) SelectRows(ctx context.Context, table string, columns []string, limit int) ([]types.Row, error) {
	allowed, err := Columns(table)
	if err != nil {
		return nil, err
	}

	cols := allowed
	if len(columns) > 0 && !(len(columns) == 1 && columns[0] == "*") {
		cols = make([]string, 0, len(columns))
		for _, c := range columns {
			c = strings.TrimSpace(c)
			if !slices.Contains(allowed, c) {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, c)
			}
			if !slices.Contains(cols, c) {
				cols = append(cols, c)
			}
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT ?",
		strings.Join(cols, ", "), table)
	rows, err := s.db.QueryContext(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	out := []types.Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(types.Row, len(cols))
		for i, c := range cols {
			row[c] = columnValue(c, vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

func columnValue(col string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if s, ok := v.(string); ok && jsonColumns[col] && json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return v
}
