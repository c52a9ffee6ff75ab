package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"virtual-env-server/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultListLimit is used when ListRecent is called with a non-positive limit
const DefaultListLimit = 50

// SQLiteRepository implements RequestRepository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// initSchema initializes the database schema
func (r *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		bytes INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		remote_addr TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRequest stores one access-log record
func (r *SQLiteRepository) SaveRequest(ctx context.Context, rec *models.RequestRecord) error {
	query := `
		INSERT INTO requests (id, method, path, status, bytes, duration_ns, remote_addr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var remoteAddr interface{}
	if rec.RemoteAddr != "" {
		remoteAddr = rec.RemoteAddr
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Method,
		rec.Path,
		rec.Status,
		rec.Bytes,
		int64(rec.Duration),
		remoteAddr,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save request %s: %w", rec.ID, err)
	}

	return nil
}

// ListRecent returns the most recent records, newest first
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]*models.RequestRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, method, path, status, bytes, duration_ns, remote_addr, created_at
		FROM requests
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var records []*models.RequestRecord
	for rows.Next() {
		var rec models.RequestRecord
		var remoteAddr sql.NullString
		var durationNs, createdAt int64

		err := rows.Scan(
			&rec.ID,
			&rec.Method,
			&rec.Path,
			&rec.Status,
			&rec.Bytes,
			&durationNs,
			&remoteAddr,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}

		if remoteAddr.Valid {
			rec.RemoteAddr = remoteAddr.String
		}
		rec.Duration = time.Duration(durationNs)
		rec.CreatedAt = time.Unix(0, createdAt)

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return records, nil
}

// CountByClass returns the number of stored requests per status class
func (r *SQLiteRepository) CountByClass(ctx context.Context) (map[models.StatusClass]int, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 404 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status >= 400 AND status != 404 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status < 400 THEN 1 ELSE 0 END), 0)
		FROM requests
	`

	var notFound, failed, ok int
	if err := r.db.QueryRowContext(ctx, query).Scan(&notFound, &failed, &ok); err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	return map[models.StatusClass]int{
		models.ClassOK:       ok,
		models.ClassNotFound: notFound,
		models.ClassError:    failed,
	}, nil
}
