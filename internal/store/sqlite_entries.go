package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/soulinitiatives/cleanup/internal/types"
	"github.com/soulinitiatives/cleanup/pkg/catalog"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

// entryRow is one insert: the columns common to every entry table plus the
// table-specific values.
type entryRow struct {
	table       string
	sessionID   string
	collectedAt string
	cols        []string
	vals        []any
}

// insertEntry stores r in one transaction. A session id that does not
// exist fails with ErrUnknownSession.
func (s *SQLiteStore) insertEntry(ctx context.Context, r entryRow) (string, time.Time, error) {
	collected, err := time.Parse(time.RFC3339, r.collectedAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, r.collectedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var session sql.NullString
	if r.sessionID != "" {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM cleanup_sessions WHERE id = ?`, r.sessionID).Scan(&one)
		if err == sql.ErrNoRows {
			return "", time.Time{}, fmt.Errorf("%w: %s", ErrUnknownSession, r.sessionID)
		}
		if err != nil {
			return "", time.Time{}, fmt.Errorf("look up session: %w", err)
		}
		session = sql.NullString{String: r.sessionID, Valid: true}
	}

	id := ulid.Make().String()
	created := s.now().UTC().Truncate(time.Second)

	cols := append([]string{"id", "session_id", "collected_at", "collected_at_utc", "created_at"}, r.cols...)
	vals := append([]any{id, session, r.collectedAt, collected.UTC().Format(time.RFC3339), created.Format(time.RFC3339)}, r.vals...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	if _, err := tx.ExecContext(ctx, query, vals...); err != nil {
		return "", time.Time{}, fmt.Errorf("insert into %s: %w", r.table, err)
	}

	if err := tx.Commit(); err != nil {
		return "", time.Time{}, fmt.Errorf("commit transaction: %w", err)
	}
	return id, created, nil
}

// InsertLocation stores a location submission.
func (s *SQLiteStore) InsertLocation(ctx context.Context, rec cleanup.LocationRecord) (*types.LocationEntry, error) {
	vals, err := jsonValues(rec.Homestays, rec.Locations, rec.HomestayBags, rec.HomestayKg, rec.LocationBags, rec.LocationKg)
	if err != nil {
		return nil, err
	}
	vals = append(vals,
		rec.TotalBagsHomestay, kgText(rec.TotalKgHomestay),
		rec.TotalBagsLocation, kgText(rec.TotalKgLocation),
	)

	id, created, err := s.insertEntry(ctx, entryRow{
		table:       catalog.TableLocations,
		sessionID:   rec.SessionID,
		collectedAt: rec.CollectedAt,
		cols: []string{
			"homestays", "locations", "homestay_bags", "homestay_kg", "location_bags", "location_kg",
			"total_bags_homestay", "total_kg_homestay", "total_bags_location", "total_kg_location",
		},
		vals: vals,
	})
	if err != nil {
		return nil, err
	}
	return &types.LocationEntry{ID: id, CreatedAt: created, LocationRecord: rec}, nil
}

// InsertTrash stores a trash sorting submission.
func (s *SQLiteStore) InsertTrash(ctx context.Context, rec cleanup.TrashRecord) (*types.TrashEntry, error) {
	vals, err := jsonValues(rec.TrashTypes)
	if err != nil {
		return nil, err
	}
	var label sql.NullString
	if rec.OtherTrashLabel != nil {
		label = sql.NullString{String: *rec.OtherTrashLabel, Valid: true}
	}
	vals = append(vals, label)
	maps, err := jsonValues(rec.BagsKg, rec.TotalsKgByType, rec.BagsCountByType)
	if err != nil {
		return nil, err
	}
	vals = append(vals, maps...)
	vals = append(vals, rec.TotalBagsTrash, kgText(rec.TotalKgTrash))

	id, created, err := s.insertEntry(ctx, entryRow{
		table:       catalog.TableTrash,
		sessionID:   rec.SessionID,
		collectedAt: rec.CollectedAt,
		cols: []string{
			"trash_types", "other_trash_label", "bags_kg", "totals_kg_by_type", "bags_count_by_type",
			"total_bags_trash", "total_kg_trash",
		},
		vals: vals,
	})
	if err != nil {
		return nil, err
	}
	return &types.TrashEntry{ID: id, CreatedAt: created, TrashRecord: rec}, nil
}

// InsertDestination stores a destination submission.
func (s *SQLiteStore) InsertDestination(ctx context.Context, rec cleanup.DestinationRecord) (*types.DestinationEntry, error) {
	vals, err := jsonValues(rec.DestinationDetails)
	if err != nil {
		return nil, err
	}
	vals = append(vals, rec.TotalBags)

	id, created, err := s.insertEntry(ctx, entryRow{
		table:       catalog.TableDestinations,
		sessionID:   rec.SessionID,
		collectedAt: rec.CollectedAt,
		cols:        []string{"destination_details", "total_bags"},
		vals:        vals,
	})
	if err != nil {
		return nil, err
	}
	return &types.DestinationEntry{ID: id, CreatedAt: created, DestinationRecord: rec}, nil
}

// InsertSurvey stores a combined survey.
func (s *SQLiteStore) InsertSurvey(ctx context.Context, rec cleanup.SurveyRecord) (*types.SurveyEntry, error) {
	vals, err := jsonValues(
		rec.Homestays, rec.Locations, rec.TrashTypes,
		rec.HomestayBags, rec.HomestayKg, rec.LocationBags, rec.LocationKg,
		rec.TrashDetails,
	)
	if err != nil {
		return nil, err
	}
	vals = append(vals,
		rec.TotalBagsHomestay, kgText(rec.TotalKgHomestay),
		rec.TotalBagsLocation, kgText(rec.TotalKgLocation),
		kgText(rec.TotalKgTrash),
	)

	id, created, err := s.insertEntry(ctx, entryRow{
		table:       catalog.TableSurveys,
		sessionID:   rec.SessionID,
		collectedAt: rec.CollectedAt,
		cols: []string{
			"homestays", "locations", "trash_types",
			"homestay_bags", "homestay_kg", "location_bags", "location_kg",
			"trash_details",
			"total_bags_homestay", "total_kg_homestay", "total_bags_location", "total_kg_location",
			"total_kg_trash",
		},
		vals: vals,
	})
	if err != nil {
		return nil, err
	}
	return &types.SurveyEntry{ID: id, CreatedAt: created, SurveyRecord: rec}, nil
}

// jsonValues encodes each value for a JSON text column. Nil slices and maps
// are stored as empty JSON rather than null.
func jsonValues(vs ...any) ([]any, error) {
	out := make([]any, len(vs))
	for i, v := range vs {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode json column: %w", err)
		}
		if string(b) == "null" {
			b = []byte(emptyJSONFor(v))
		}
		out[i] = string(b)
	}
	return out, nil
}

func emptyJSONFor(v any) string {
	switch v.(type) {
	case []string:
		return "[]"
	default:
		return "{}"
	}
}

// kgText stores a weight as an exact decimal string.
func kgText(v float64) string {
	return decimal.NewFromFloat(v).String()
}
