package store

import (
	"context"
	"time"

	"github.com/soulinitiatives/cleanup/internal/types"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

// mockStore is a compile-time check that the Store interface can be implemented.
type mockStore struct{}

var _ Store = (*mockStore)(nil)

func (m *mockStore) CreateSession(ctx context.Context) (*types.Session, error) { return nil, nil }
func (m *mockStore) InsertLocation(ctx context.Context, rec cleanup.LocationRecord) (*types.LocationEntry, error) {
	return nil, nil
}
func (m *mockStore) InsertTrash(ctx context.Context, rec cleanup.TrashRecord) (*types.TrashEntry, error) {
	return nil, nil
}
func (m *mockStore) InsertDestination(ctx context.Context, rec cleanup.DestinationRecord) (*types.DestinationEntry, error) {
	return nil, nil
}
func (m *mockStore) InsertSurvey(ctx context.Context, rec cleanup.SurveyRecord) (*types.SurveyEntry, error) {
	return nil, nil
}
func (m *mockStore) SelectRows(ctx context.Context, table string, columns []string, limit int) ([]types.Row, error) {
	return nil, nil
}
func (m *mockStore) Analytics(ctx context.Context, period cleanup.Period, loc *time.Location) ([]cleanup.AnalyticsRow, error) {
	return nil, nil
}
func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) { return nil, nil }
func (m *mockStore) SchemaVersion(ctx context.Context) (int64, error)        { return 0, nil }
func (m *mockStore) GenerateSnapshot(ctx context.Context) error              { return nil }
func (m *mockStore) GetSnapshotPath(ctx context.Context) (string, error)     { return "", nil }
func (m *mockStore) Close() error                                            { return nil }
