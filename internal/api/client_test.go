package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/soulinitiatives/cleanup/internal/api"
	"github.com/soulinitiatives/cleanup/internal/store"
	"github.com/soulinitiatives/cleanup/pkg/catalog"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

const clientTestKey = "client-test-key"

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cleanup.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	h := api.NewHandler(s, clientTestKey, "test", catalog.DefaultTimezone)
	srv := httptest.NewServer(api.NewRouter(h, api.NewRateLimiter(100, 100)))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL, apiKey string) *cleanup.Client {
	t.Helper()
	c, err := cleanup.NewClient(cleanup.ClientConfig{BaseURL: baseURL, APIKey: apiKey, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Drives the client package end to end against the real router and store.
func TestClient_SubmitAndAggregate(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	client := newClient(t, srv.URL, clientTestKey)

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	sessions := cleanup.NewSessionManager(cleanup.BackendSessionCreator{Backend: client})
	// 21:00 UTC on Jan 15 is 06:00 on Jan 16 in GMT+9
	clock := cleanup.WithClock(func() time.Time { return time.Date(2026, 1, 15, 21, 0, 0, 0, time.UTC) })

	// Given: a location report and a destination report in one session
	location := cleanup.NewScreen(cleanup.NewLocationForm(), client, cleanup.WithSessions(sessions), clock)
	err := location.Edit(func(f *cleanup.LocationForm) error {
		f.SelectHomestays([]string{"Kri"})
		if err := f.SetHomestayBags("Kri", "2"); err != nil {
			return err
		}
		return f.SetHomestayKg("Kri", "3.5")
	})
	if err != nil {
		t.Fatalf("Edit(location) error = %v", err)
	}
	if _, err := location.Submit(ctx); err != nil {
		t.Fatalf("Submit(location) error = %v", err)
	}

	destination := cleanup.NewScreen(cleanup.NewDestinationForm(), client, cleanup.WithSessions(sessions), clock)
	err = destination.Edit(func(f *cleanup.DestinationForm) error {
		if err := f.SetBags("ropes", 3); err != nil {
			return err
		}
		return f.SetDestination("ropes", catalog.DestinationLandfill)
	})
	if err != nil {
		t.Fatalf("Edit(destination) error = %v", err)
	}
	if _, err := destination.Submit(ctx); err != nil {
		t.Fatalf("Submit(destination) error = %v", err)
	}

	// Then: both submissions share one backend session
	var sessionRows []struct {
		ID string `json:"id"`
	}
	if err := client.Select(ctx, catalog.TableSessions, []string{"id"}, 10, &sessionRows); err != nil {
		t.Fatalf("Select(sessions) error = %v", err)
	}
	if len(sessionRows) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessionRows))
	}
	id, ok := sessions.SessionID()
	if !ok || id != sessionRows[0].ID {
		t.Errorf("SessionID() = %q, %v, want %q", id, ok, sessionRows[0].ID)
	}

	// And: the analytics RPC aggregates both into the local day
	fetcher := cleanup.NewAnalyticsFetcher(client, catalog.DefaultTimezone, nil)
	if err := fetcher.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	rows := fetcher.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.PeriodStart != "2026-01-16" {
		t.Errorf("PeriodStart = %q, want 2026-01-16", row.PeriodStart)
	}
	if got := row.LocationSubmissions.Int(); got != 1 {
		t.Errorf("LocationSubmissions = %d, want 1", got)
	}
	if got := row.TotalKgHomestay.Kg(); got != "3.5" {
		t.Errorf("TotalKgHomestay = %q, want 3.5", got)
	}
	if got := row.DestinationLandfill.Int(); got != 3 {
		t.Errorf("DestinationLandfill = %d, want 3", got)
	}

	card := cleanup.BuildCard(row, cleanup.PeriodDay, "en")
	if card.Title != "1/16/2026" {
		t.Errorf("card.Title = %q, want 1/16/2026", card.Title)
	}
}

func TestClient_WrongKeyIsUnauthorized(t *testing.T) {
	srv := newBackend(t)
	client := newClient(t, srv.URL, "wrong")

	err := client.Insert(context.Background(), catalog.TableSessions, struct{}{})

	if !cleanup.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("Insert() error = %v, want 401", err)
	}
}

func TestClient_RejectedRecordSurfacesProblem(t *testing.T) {
	srv := newBackend(t)
	client := newClient(t, srv.URL, clientTestKey)

	err := client.Insert(context.Background(), catalog.TableDestinations, cleanup.DestinationRecord{
		CollectedAt: "2026-01-16T06:00:00+09:00",
		DestinationDetails: map[string]cleanup.DestinationDetail{
			"ropes": {Bags: 1, Destination: "ocean"},
		},
		TotalBags: 1,
	})

	if !cleanup.IsStatus(err, http.StatusUnprocessableEntity) {
		t.Errorf("Insert() error = %v, want 422", err)
	}
}
