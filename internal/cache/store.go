package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"gencatalog/internal/logging"
	"gencatalog/internal/metrics"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. A database with another
// version is rebuilt, since everything in it can be recomputed.
const schemaVersion = 1

const (
	databaseName = "cache.db"
	locksDirName = "locks"
)

// Store is a persistent memo cache backed by SQLite.
type Store struct {
	db       *sql.DB
	dir      string
	locksDir string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	group    singleflight.Group
}

// EntryInfo describes a stored entry without its payload.
type EntryInfo struct {
	Key       string    `json:"key"`
	Func      string    `json:"func"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records hits, misses and failed computations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the cache database under dir.
func Open(dir string, opts ...Option) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory required")
	}
	locksDir := filepath.Join(dir, locksDirName)
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, databaseName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:       db,
		dir:      dir,
		locksDir: locksDir,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = logging.NewComponentLogger(store.logger, "cache")

	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 1 {
		var version int
		err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
		switch {
		case err == nil && version == schemaVersion:
			return nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("read schema version: %w", err)
		}
		s.logger.Info("rebuilding cache database",
			logging.String(logging.FieldEventType, "cache_schema_rebuild"),
			logging.Int("found_version", version),
			logging.Int("expected_version", schemaVersion))
	}
	return s.createSchema(ctx)
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DROP TABLE IF EXISTS cache_entries", "DROP TABLE IF EXISTS schema_version"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop stale schema: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// lookup returns a fresh payload for key. Expired entries are deleted.
func (s *Store) lookup(ctx context.Context, key Key, ttl time.Duration) ([]byte, bool, error) {
	var (
		createdRaw string
		payload    []byte
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at, payload FROM cache_entries WHERE key = ?", key.String(),
	).Scan(&createdRaw, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil || s.now().Sub(createdAt) > ttl {
		if _, delErr := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key.String()); delErr != nil {
			return nil, false, fmt.Errorf("discard expired entry: %w", delErr)
		}
		s.logger.Debug("discarded expired cache entry",
			logging.String(logging.FieldCacheKey, key.String()),
			logging.String("created_at", createdRaw))
		return nil, false, nil
	}
	return payload, true, nil
}

func (s *Store) put(ctx context.Context, key Key, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, func, created_at, payload) VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET func = excluded.func, created_at = excluded.created_at, payload = excluded.payload`,
		key.String(),
		key.Func,
		s.now().UTC().Format(time.RFC3339Nano),
		payload,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Entries lists stored entries, newest first.
func (s *Store) Entries(ctx context.Context) ([]EntryInfo, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, func, created_at, length(payload) FROM cache_entries ORDER BY created_at DESC, key")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []EntryInfo
	for rows.Next() {
		var (
			info       EntryInfo
			createdRaw string
		)
		if err := rows.Scan(&info.Key, &info.Func, &createdRaw, &info.Size); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdRaw)
		entries = append(entries, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries, fresh or not.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM cache_entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return count, nil
}

// Clear removes every entry unconditionally and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}

	s.logger.Info("cleared cache",
		logging.String(logging.FieldEventType, "cache_cleared"),
		logging.Int64("removed", removed))
	return removed, nil
}

func (s *Store) lockPath(key Key) string {
	return filepath.Join(s.locksDir, key.Digest+".lock")
}
