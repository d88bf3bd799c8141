package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/soulinitiatives/cleanup/internal/types"
	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// SQLiteStore is the SQLite-backed cleanup database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection, and each :memory: connection is its own
	// database, so the pool is pinned to one connection.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath, now: time.Now}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession stores a new session with a random UUID.
func (s *SQLiteStore) CreateSession(ctx context.Context) (*types.Session, error) {
	sess := &types.Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cleanup_sessions (id, created_at) VALUES (?, ?)`,
		sess.ID, sess.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetStats returns row counts per table and the last snapshot time.
func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	stats := &types.StoreStats{}
	counts := []struct {
		table string
		dst   *int64
	}{
		{catalog.TableSessions, &stats.Sessions},
		{catalog.TableLocations, &stats.LocationEntries},
		{catalog.TableTrash, &stats.TrashEntries},
		{catalog.TableDestinations, &stats.DestinationSurveys},
		{catalog.TableSurveys, &stats.Surveys},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	if info, err := os.Stat(s.snapshotPath()); err == nil {
		t := info.ModTime().UTC()
		stats.LastSnapshot = &t
	}

	return stats, nil
}

// SchemaVersion returns the applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int64, error) {
	return schemaVersion(s.db)
}

// snapshotPath is where the latest snapshot lives, next to the database.
func (s *SQLiteStore) snapshotPath() string {
	return filepath.Join(filepath.Dir(s.dbPath), "snapshots", "current.db")
}

// GenerateSnapshot writes a consistent copy of the database with VACUUM INTO
// and atomically replaces the previous snapshot.
func (s *SQLiteStore) GenerateSnapshot(ctx context.Context) error {
	final := s.snapshotPath()
	if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp := final + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale temp snapshot: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		return fmt.Errorf("vacuum into: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	return nil
}

// GetSnapshotPath returns the path of the latest snapshot.
func (s *SQLiteStore) GetSnapshotPath(ctx context.Context) (string, error) {
	p := s.snapshotPath()
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoSnapshot
		}
		return "", fmt.Errorf("stat snapshot: %w", err)
	}
	return p, nil
}
