package store

import (
	"context"
	"time"

	"github.com/soulinitiatives/cleanup/internal/types"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

// Store defines the interface contract for all cleanup storage operations.
type Store interface {
	CreateSession(ctx context.Context) (*types.Session, error)
	InsertLocation(ctx context.Context, rec cleanup.LocationRecord) (*types.LocationEntry, error)
	InsertTrash(ctx context.Context, rec cleanup.TrashRecord) (*types.TrashEntry, error)
	InsertDestination(ctx context.Context, rec cleanup.DestinationRecord) (*types.DestinationEntry, error)
	InsertSurvey(ctx context.Context, rec cleanup.SurveyRecord) (*types.SurveyEntry, error)
	SelectRows(ctx context.Context, table string, columns []string, limit int) ([]types.Row, error)
	Analytics(ctx context.Context, period cleanup.Period, loc *time.Location) ([]cleanup.AnalyticsRow, error)
	GetStats(ctx context.Context) (*types.StoreStats, error)
	SchemaVersion(ctx context.Context) (int64, error)
	GenerateSnapshot(ctx context.Context) error
	GetSnapshotPath(ctx context.Context) (string, error)
	Close() error
}
