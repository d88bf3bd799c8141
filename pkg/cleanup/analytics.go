package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// Period is the bucket size of analytics rows.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod parses "day", "month" or "year".
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q: want day, month or year", s)
	}
}

// NumLike is a numeric field that may arrive as a JSON number, a numeric
// string, null, or not at all. Decoding never fails and every accessor
// falls back to zero.
type NumLike struct {
	raw   string
	isStr bool
}

// NumFromInt returns a NumLike holding n as a JSON number.
func NumFromInt(n int64) NumLike { return NumLike{raw: strconv.FormatInt(n, 10)} }

// NumFromString returns a NumLike holding s as a JSON string.
func NumFromString(s string) NumLike { return NumLike{raw: s, isStr: true} }

// NumFromDecimal returns a NumLike holding d as a JSON number.
func NumFromDecimal(d decimal.Decimal) NumLike { return NumLike{raw: d.String()} }

func (n *NumLike) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = NumLike{}
	if len(b) == 0 {
		return nil
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*n = NumLike{raw: s, isStr: true}
		}
	case c == '-' || (c >= '0' && c <= '9'):
		*n = NumLike{raw: string(b)}
	}
	return nil
}

func (n NumLike) MarshalJSON() ([]byte, error) {
	switch {
	case n.raw == "" && !n.isStr:
		return []byte("null"), nil
	case n.isStr:
		return json.Marshal(n.raw)
	default:
		return []byte(n.raw), nil
	}
}

// IsNull reports whether the field was null or absent.
func (n NumLike) IsNull() bool { return n.raw == "" && !n.isStr }

// Decimal returns the value. Strings are read leniently from their numeric
// prefix; anything unreadable or outside the float64 range is zero.
func (n NumLike) Decimal() decimal.Decimal {
	if n.raw == "" {
		return decimal.Zero
	}
	s := n.raw
	if n.isStr {
		s = numericPrefix(strings.TrimSpace(s))
		if s == "" {
			return decimal.Zero
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero
	}
	return d
}

// Int returns the value truncated toward zero. Strings are read from their
// integer prefix, so "12.9" is 12.
func (n NumLike) Int() int {
	if n.isStr {
		v, ok := ParseCount(n.raw)
		if !ok {
			return 0
		}
		return v
	}
	i := n.Decimal().Truncate(0).BigInt()
	if !i.IsInt64() || i.Int64() > math.MaxInt || i.Int64() < math.MinInt {
		return 0
	}
	return int(i.Int64())
}

// Float returns the value as a float64.
func (n NumLike) Float() float64 { return n.Decimal().InexactFloat64() }

// Kg renders the value as kilograms with one decimal place.
func (n NumLike) Kg() string { return FormatKg(n.Decimal()) }

// AnalyticsRow is one period bucket returned by the analytics RPC.
type AnalyticsRow struct {
	PeriodStart string `json:"period_start"`

	LocationSubmissions NumLike `json:"location_submissions"`
	TotalBagsHomestay   NumLike `json:"total_bags_homestay"`
	TotalKgHomestay     NumLike `json:"total_kg_homestay"`
	TotalBagsLocation   NumLike `json:"total_bags_location"`
	TotalKgLocation     NumLike `json:"total_kg_location"`

	TrashSubmissions NumLike `json:"trash_submissions"`
	TrashBags        NumLike `json:"trash_bags"`
	TotalKgTrash     NumLike `json:"total_kg_trash"`

	DestinationSubmissions NumLike `json:"destination_submissions"`
	DestinationBags        NumLike `json:"destination_bags"`
	DestinationLandfill    NumLike `json:"destination_landfill"`
	DestinationBankSampah  NumLike `json:"destination_bank_sampah"`
	DestinationKri         NumLike `json:"destination_kri"`
}

// AnalyticsParams are the RPC arguments.
type AnalyticsParams struct {
	Period   Period `json:"p_period"`
	Timezone string `json:"p_tz"`
}

// AnalyticsFetcher loads analytics rows for the selected period. A failed
// fetch clears the rows and is logged; it never panics. When requests
// overlap, only the most recently started one may update the rows.
type AnalyticsFetcher struct {
	backend  Backend
	timezone string
	logger   *slog.Logger

	mu      sync.Mutex
	period  Period
	rows    []AnalyticsRow
	err     error
	gen     uint64
	loading int
}

// NewAnalyticsFetcher creates a fetcher for the day period. An empty
// timezone uses catalog.DefaultTimezone.
func NewAnalyticsFetcher(backend Backend, timezone string, logger *slog.Logger) *AnalyticsFetcher {
	if timezone == "" {
		timezone = catalog.DefaultTimezone
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsFetcher{
		backend:  backend,
		timezone: timezone,
		logger:   logger,
		period:   PeriodDay,
	}
}

func (f *AnalyticsFetcher) Period() Period {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period
}

// Rows returns a copy of the current rows.
func (f *AnalyticsFetcher) Rows() []AnalyticsRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows)
}

// Err returns the error of the last applied fetch.
func (f *AnalyticsFetcher) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *AnalyticsFetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading > 0
}

// SetPeriod switches the period and re-fetches when it changed.
func (f *AnalyticsFetcher) SetPeriod(ctx context.Context, p Period) error {
	f.mu.Lock()
	if f.period == p {
		f.mu.Unlock()
		return nil
	}
	f.period = p
	f.mu.Unlock()
	return f.Refresh(ctx)
}

// Refresh fetches rows for the current period.
func (f *AnalyticsFetcher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	params := AnalyticsParams{Period: f.period, Timezone: f.timezone}
	f.loading++
	f.mu.Unlock()

	var rows []AnalyticsRow
	err := f.backend.RPC(ctx, catalog.RPCAnalytics, params, &rows)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading--
	if gen != f.gen {
		f.logger.Debug("discarding stale analytics result", "period", params.Period)
		return err
	}
	if err != nil {
		f.rows = nil
		f.err = err
		f.logger.Warn("cleanup_analytics error", "period", params.Period, "error", err)
		return err
	}
	f.rows = rows
	f.err = nil
	return nil
}

// Card is the display model of one AnalyticsRow.
type Card struct {
	Title string

	LocationReports int
	BagsHomestays   int
	KgHomestays     string
	BagsLocations   int
	KgLocations     string

	SortingReports int
	SortedBags     int
	SortedKg       string

	DestinationReports int
	DestinationBags    int
	Landfill           int
	BankSampah         int
	Kri                int

	// ShowDestinations is false when every destination counter is zero.
	ShowDestinations bool
}

// BuildCard coerces row into a Card titled for period and lang.
func BuildCard(row AnalyticsRow, period Period, lang string) Card {
	c := Card{
		Title: FormatPeriodTitle(row.PeriodStart, period, lang),

		LocationReports: row.LocationSubmissions.Int(),
		BagsHomestays:   row.TotalBagsHomestay.Int(),
		KgHomestays:     row.TotalKgHomestay.Kg(),
		BagsLocations:   row.TotalBagsLocation.Int(),
		KgLocations:     row.TotalKgLocation.Kg(),

		SortingReports: row.TrashSubmissions.Int(),
		SortedBags:     row.TrashBags.Int(),
		SortedKg:       row.TotalKgTrash.Kg(),

		DestinationReports: row.DestinationSubmissions.Int(),
		DestinationBags:    row.DestinationBags.Int(),
		Landfill:           row.DestinationLandfill.Int(),
		BankSampah:         row.DestinationBankSampah.Int(),
		Kri:                row.DestinationKri.Int(),
	}
	c.ShowDestinations = c.DestinationReports > 0 || c.DestinationBags > 0 ||
		c.Landfill > 0 || c.BankSampah > 0 || c.Kri > 0
	return c
}

var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	"id": {"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"},
}

// FormatPeriodTitle renders a YYYY-MM-DD bucket start for display. Day
// buckets are numeric dates (M/D/YYYY in English, D/M/YYYY in Indonesian),
// month buckets are "Month YYYY" and year buckets are the year. Unknown
// languages use English; unparseable dates are returned unchanged.
func FormatPeriodTitle(periodStart string, period Period, lang string) string {
	s := periodStart
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return periodStart
	}
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	names, ok := monthNames[lang]
	if !ok {
		lang = "en"
		names = monthNames[lang]
	}

	switch period {
	case PeriodDay:
		if lang == "id" {
			return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
		}
		return fmt.Sprintf("%d/%d/%d", int(d.Month()), d.Day(), d.Year())
	case PeriodMonth:
		return fmt.Sprintf("%s %d", names[d.Month()-1], d.Year())
	default:
		return strconv.Itoa(d.Year())
	}
}
