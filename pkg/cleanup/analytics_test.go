package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

func TestNumLike_Coercion(t *testing.T) {
	raw := `{
		"period_start": "2026-01-15",
		"total_kg_trash": "12.50",
		"trash_bags": "7",
		"trash_submissions": 3,
		"total_kg_homestay": null,
		"total_kg_location": 4.25,
		"destination_kri": true
	}`

	var row AnalyticsRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got := row.TotalKgTrash.Kg(); got != "12.5" {
		t.Errorf("total_kg_trash: expected 12.5, got %s", got)
	}
	if got := row.TotalKgHomestay.Kg(); got != "0.0" {
		t.Errorf("null kg: expected 0.0, got %s", got)
	}
	if got := row.TrashBags.Int(); got != 7 {
		t.Errorf("string count: expected 7, got %d", got)
	}
	if got := row.TrashSubmissions.Int(); got != 3 {
		t.Errorf("number count: expected 3, got %d", got)
	}
	if got := row.TotalKgLocation.Kg(); got != "4.3" {
		t.Errorf("number kg: expected 4.3, got %s", got)
	}
	if got := row.DestinationBags.Int(); got != 0 {
		t.Errorf("absent field: expected 0, got %d", got)
	}
	if got := row.DestinationKri.Int(); got != 0 {
		t.Errorf("non-numeric JSON: expected 0, got %d", got)
	}
}

func TestNumLike_Accessors(t *testing.T) {
	tests := []struct {
		name    string
		n       NumLike
		wantInt int
		wantKg  string
	}{
		{"fractional string truncates", NumFromString("12.9"), 12, "12.9"},
		{"garbage string", NumFromString("abc"), 0, "0.0"},
		{"empty string", NumFromString(""), 0, "0.0"},
		{"exponent string", NumFromString("1e2"), 1, "100.0"},
		{"padded string", NumFromString(" 5.05 "), 5, "5.1"},
		{"integer", NumFromInt(42), 42, "42.0"},
		{"null", NumLike{}, 0, "0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.Int(); got != tt.wantInt {
				t.Errorf("Int() = %d, want %d", got, tt.wantInt)
			}
			if got := tt.n.Kg(); got != tt.wantKg {
				t.Errorf("Kg() = %s, want %s", got, tt.wantKg)
			}
		})
	}
}

func TestNumLike_OutOfRangeIsZero(t *testing.T) {
	for _, raw := range []string{`1e400`, `-1e400`, `"1e400"`} {
		var n NumLike
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", raw, err)
		}
		if got := n.Kg(); got != "0.0" {
			t.Errorf("%s: Kg() = %s, want 0.0", raw, got)
		}
		if got := n.Float(); got != 0 {
			t.Errorf("%s: Float() = %v, want 0", raw, got)
		}
	}

	var big NumLike
	if err := json.Unmarshal([]byte(`1e300`), &big); err != nil {
		t.Fatal(err)
	}
	if got := big.Int(); got != 0 {
		t.Errorf("Int() of 1e300 = %d, want 0", got)
	}
}

func TestNumLike_MarshalKeepsWireShape(t *testing.T) {
	out, err := json.Marshal(struct {
		A NumLike `json:"a"`
		B NumLike `json:"b"`
		C NumLike `json:"c"`
	}{NumFromInt(3), NumFromString("1.50"), NumLike{}})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":3,"b":"1.50","c":null}` {
		t.Errorf("Unexpected JSON %s", out)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"day", "Month", " year "} {
		if _, err := ParsePeriod(s); err != nil {
			t.Errorf("ParsePeriod(%q) error = %v", s, err)
		}
	}
	if _, err := ParsePeriod("week"); err == nil {
		t.Error("Expected error for week")
	}
}

func TestAnalyticsFetcher_RefreshReplacesRows(t *testing.T) {
	backend := &fakeBackend{rpcFn: func(_ context.Context, fn string, _ any) (any, error) {
		if fn != catalog.RPCAnalytics {
			t.Errorf("Expected rpc %s, got %s", catalog.RPCAnalytics, fn)
		}
		return []map[string]any{
			{"period_start": "2026-01-16", "trash_bags": 4},
			{"period_start": "2026-01-15", "trash_bags": "2"},
		}, nil
	}}
	f := NewAnalyticsFetcher(backend, "", quietLogger())

	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	rows := f.Rows()
	if len(rows) != 2 || rows[0].PeriodStart != "2026-01-16" {
		t.Fatalf("Unexpected rows %+v", rows)
	}
	params, ok := backend.rpcs[0].(AnalyticsParams)
	if !ok {
		t.Fatalf("Expected AnalyticsParams, got %T", backend.rpcs[0])
	}
	if params.Period != PeriodDay || params.Timezone != catalog.DefaultTimezone {
		t.Errorf("Unexpected params %+v", params)
	}
	if f.Loading() {
		t.Error("Expected Loading() false after refresh")
	}
}

func TestAnalyticsFetcher_FailureClearsRowsAndLogs(t *testing.T) {
	// Given a fetcher with rows from an earlier success
	calls := 0
	backend := &fakeBackend{rpcFn: func(context.Context, string, any) (any, error) {
		calls++
		if calls == 1 {
			return []map[string]any{{"period_start": "2026-01-15"}}, nil
		}
		return nil, errors.New("connection refused")
	}}
	var logs bytes.Buffer
	f := NewAnalyticsFetcher(backend, "", slog.New(slog.NewTextHandler(&logs, nil)))
	_ = f.Refresh(context.Background())

	// When the next fetch fails
	err := f.Refresh(context.Background())

	// Then rows are cleared, the error is kept and a warning is logged
	if err == nil || f.Err() == nil {
		t.Error("Expected fetch error to be reported")
	}
	if len(f.Rows()) != 0 {
		t.Errorf("Expected rows cleared, got %d", len(f.Rows()))
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "cleanup_analytics error") {
		t.Errorf("Expected warning log, got %q", logs.String())
	}
}

func TestAnalyticsFetcher_SetPeriod(t *testing.T) {
	backend := &fakeBackend{rpcFn: func(context.Context, string, any) (any, error) {
		return []map[string]any{}, nil
	}}
	f := NewAnalyticsFetcher(backend, "UTC", quietLogger())

	_ = f.SetPeriod(context.Background(), PeriodDay)
	if backend.rpcCount() != 0 {
		t.Errorf("Expected no fetch for unchanged period, got %d", backend.rpcCount())
	}

	_ = f.SetPeriod(context.Background(), PeriodMonth)
	if backend.rpcCount() != 1 {
		t.Fatalf("Expected 1 fetch, got %d", backend.rpcCount())
	}
	if p := backend.rpcs[0].(AnalyticsParams); p.Period != PeriodMonth || p.Timezone != "UTC" {
		t.Errorf("Unexpected params %+v", p)
	}
}

func TestAnalyticsFetcher_DiscardsStaleResult(t *testing.T) {
	// Given a first request that resolves after a second one
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{}
	backend.rpcFn = func(context.Context, string, any) (any, error) {
		if backend.rpcCount() == 1 {
			close(started)
			<-release
			return []map[string]any{{"period_start": "stale"}}, nil
		}
		return []map[string]any{{"period_start": "fresh"}}, nil
	}
	f := NewAnalyticsFetcher(backend, "", quietLogger())

	done := make(chan struct{})
	go func() {
		_ = f.Refresh(context.Background())
		close(done)
	}()
	<-started

	// When the second request finishes first
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(release)
	<-done

	// Then the late result does not overwrite it
	rows := f.Rows()
	if len(rows) != 1 || rows[0].PeriodStart != "fresh" {
		t.Errorf("Expected fresh rows, got %+v", rows)
	}
}

func TestBuildCard(t *testing.T) {
	row := AnalyticsRow{
		PeriodStart:         "2026-03-05",
		LocationSubmissions: NumFromInt(2),
		TotalBagsHomestay:   NumFromString("5"),
		TotalKgHomestay:     NumFromString("12.50"),
		TotalKgTrash:        NumLike{},
	}

	c := BuildCard(row, PeriodMonth, "en")

	if c.Title != "March 2026" {
		t.Errorf("Expected March 2026, got %s", c.Title)
	}
	if c.LocationReports != 2 || c.BagsHomestays != 5 || c.KgHomestays != "12.5" || c.SortedKg != "0.0" {
		t.Errorf("Unexpected card %+v", c)
	}
	if c.ShowDestinations {
		t.Error("Expected destinations hidden when all counters are zero")
	}

	row.DestinationKri = NumFromString("1")
	if !BuildCard(row, PeriodMonth, "en").ShowDestinations {
		t.Error("Expected destinations shown")
	}
}

func TestFormatPeriodTitle(t *testing.T) {
	tests := []struct {
		start  string
		period Period
		lang   string
		want   string
	}{
		{"2026-03-05", PeriodDay, "en", "3/5/2026"},
		{"2026-03-05", PeriodDay, "id", "5/3/2026"},
		{"2026-03-05", PeriodMonth, "en-US", "March 2026"},
		{"2026-03-05", PeriodMonth, "id-ID", "Maret 2026"},
		{"2026-01-01", PeriodYear, "id", "2026"},
		{"2026-03-05T00:00:00Z", PeriodDay, "fr", "3/5/2026"},
		{"oops", PeriodDay, "en", "oops"},
	}
	for _, tt := range tests {
		if got := FormatPeriodTitle(tt.start, tt.period, tt.lang); got != tt.want {
			t.Errorf("FormatPeriodTitle(%q, %s, %s) = %q, want %q", tt.start, tt.period, tt.lang, got, tt.want)
		}
	}
}
