package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

// bucket accumulates one analytics period.
type bucket struct {
	locationSubmissions int64
	bagsHomestay        int64
	kgHomestay          decimal.Decimal
	bagsLocation        int64
	kgLocation          decimal.Decimal

	trashSubmissions int64
	trashBags        int64
	kgTrash          decimal.Decimal

	destinationSubmissions int64
	destinationBags        int64
	landfill               int64
	bankSampah             int64
	kri                    int64
}

// periodStart truncates t, already in the target zone, to its bucket start.
func periodStart(t time.Time, period cleanup.Period) string {
	switch period {
	case cleanup.PeriodYear:
		return fmt.Sprintf("%04d-01-01", t.Year())
	case cleanup.PeriodMonth:
		return fmt.Sprintf("%04d-%02d-01", t.Year(), int(t.Month()))
	default:
		return t.Format(time.DateOnly)
	}
}

// Analytics aggregates every submission into period buckets computed in
// loc, newest first. Counts are JSON numbers; weights are two-place decimal
// strings.
func (s *SQLiteStore) Analytics(ctx context.Context, period cleanup.Period, loc *time.Location) ([]cleanup.AnalyticsRow, error) {
	if loc == nil {
		loc = time.UTC
	}
	buckets := map[string]*bucket{}
	get := func(collectedUTC string) (*bucket, error) {
		t, err := time.Parse(time.RFC3339, collectedUTC)
		if err != nil {
			return nil, fmt.Errorf("parse collected_at_utc %q: %w", collectedUTC, err)
		}
		key := periodStart(t.In(loc), period)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		return b, nil
	}

	err := s.scanEach(ctx, `
		SELECT collected_at_utc, total_bags_homestay, total_kg_homestay, total_bags_location, total_kg_location
		FROM cleanup_location_entries`,
		func(rows *sql.Rows) error {
			var at, kgH, kgL string
			var bagsH, bagsL int64
			if err := rows.Scan(&at, &bagsH, &kgH, &bagsL, &kgL); err != nil {
				return err
			}
			b, err := get(at)
			if err != nil {
				return err
			}
			b.locationSubmissions++
			b.bagsHomestay += bagsH
			b.kgHomestay = b.kgHomestay.Add(parseKg(kgH))
			b.bagsLocation += bagsL
			b.kgLocation = b.kgLocation.Add(parseKg(kgL))
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", catalog.TableLocations, err)
	}

	err = s.scanEach(ctx, `
		SELECT collected_at_utc, total_bags_trash, total_kg_trash
		FROM cleanup_trash_entries`,
		func(rows *sql.Rows) error {
			var at, kg string
			var bags int64
			if err := rows.Scan(&at, &bags, &kg); err != nil {
				return err
			}
			b, err := get(at)
			if err != nil {
				return err
			}
			b.trashSubmissions++
			b.trashBags += bags
			b.kgTrash = b.kgTrash.Add(parseKg(kg))
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", catalog.TableTrash, err)
	}

	err = s.scanEach(ctx, `
		SELECT collected_at_utc, total_bags, destination_details
		FROM cleanup_destination_surveys`,
		func(rows *sql.Rows) error {
			var at, detailsJSON string
			var bags int64
			if err := rows.Scan(&at, &bags, &detailsJSON); err != nil {
				return err
			}
			b, err := get(at)
			if err != nil {
				return err
			}
			var details map[string]cleanup.DestinationDetail
			if err := json.Unmarshal([]byte(detailsJSON), &details); err != nil {
				return fmt.Errorf("decode destination_details: %w", err)
			}
			b.destinationSubmissions++
			b.destinationBags += bags
			for _, d := range details {
				switch d.Destination {
				case catalog.DestinationLandfill:
					b.landfill += int64(d.Bags)
				case catalog.DestinationBankSampah:
					b.bankSampah += int64(d.Bags)
				case catalog.DestinationKri:
					b.kri += int64(d.Bags)
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", catalog.TableDestinations, err)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]cleanup.AnalyticsRow, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, cleanup.AnalyticsRow{
			PeriodStart: k,

			LocationSubmissions: cleanup.NumFromInt(b.locationSubmissions),
			TotalBagsHomestay:   cleanup.NumFromInt(b.bagsHomestay),
			TotalKgHomestay:     kgNum(b.kgHomestay),
			TotalBagsLocation:   cleanup.NumFromInt(b.bagsLocation),
			TotalKgLocation:     kgNum(b.kgLocation),

			TrashSubmissions: cleanup.NumFromInt(b.trashSubmissions),
			TrashBags:        cleanup.NumFromInt(b.trashBags),
			TotalKgTrash:     kgNum(b.kgTrash),

			DestinationSubmissions: cleanup.NumFromInt(b.destinationSubmissions),
			DestinationBags:        cleanup.NumFromInt(b.destinationBags),
			DestinationLandfill:    cleanup.NumFromInt(b.landfill),
			DestinationBankSampah:  cleanup.NumFromInt(b.bankSampah),
			DestinationKri:         cleanup.NumFromInt(b.kri),
		})
	}
	return out, nil
}

func (s *SQLiteStore) scanEach(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func parseKg(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// kgNum renders a weight the way a numeric column arrives over the wire.
func kgNum(d decimal.Decimal) cleanup.NumLike {
	return cleanup.NumFromString(d.StringFixed(2))
}
