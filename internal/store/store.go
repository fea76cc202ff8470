// Package store provides SQLite-backed persistence for the transfer log:
// a record of every file sent or received over the covert channel, used
// by internal/adminapi to answer /api/v1/transfers.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding the transfer log.
type Store struct {
	conn *sql.DB
}

// Open opens or creates a SQLite database at path and brings it up to
// the latest schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: migration source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("store: migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Health reports whether the database connection is usable.
func (s *Store) Health() error {
	return s.conn.Ping()
}

// Direction distinguishes the two sides of a logged transfer.
type Direction string

const (
	DirectionSend    Direction = "send"
	DirectionReceive Direction = "receive"
)

// Status is the lifecycle state of a logged transfer.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TransferRecord is one row of the transfer log.
type TransferRecord struct {
	ID          int64
	Filename    string
	Peer        string
	Direction   Direction
	Bytes       int64
	ChunkCount  int
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      Status
	Error       string
}

// BeginTransfer inserts a new in-progress row and returns its id.
func (s *Store) BeginTransfer(ctx context.Context, filename, peer string, dir Direction, startedAt time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO transfers (filename, peer, direction, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		filename, peer, string(dir), startedAt, string(StatusInProgress),
	)
	if err != nil {
		return 0, fmt.Errorf("store: begin transfer: %w", err)
	}
	return res.LastInsertId()
}

// CompleteTransfer marks a transfer row as completed with its final size.
func (s *Store) CompleteTransfer(ctx context.Context, id int64, bytes int64, chunkCount int, completedAt time.Time) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE transfers SET bytes = ?, chunk_count = ?, completed_at = ?, status = ? WHERE id = ?`,
		bytes, chunkCount, completedAt, string(StatusCompleted), id,
	)
	if err != nil {
		return fmt.Errorf("store: complete transfer %d: %w", id, err)
	}
	return nil
}

// FailTransfer marks a transfer row as failed with a reason.
func (s *Store) FailTransfer(ctx context.Context, id int64, cause error, completedAt time.Time) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE transfers SET completed_at = ?, status = ?, error = ? WHERE id = ?`,
		completedAt, string(StatusFailed), cause.Error(), id,
	)
	if err != nil {
		return fmt.Errorf("store: fail transfer %d: %w", id, err)
	}
	return nil
}

// RecentTransfers returns up to limit transfer records, most recent first.
func (s *Store) RecentTransfers(ctx context.Context, limit int) ([]TransferRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, filename, peer, direction, bytes, chunk_count, started_at, completed_at, status, error
		   FROM transfers ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: recent transfers: %w", err)
	}
	defer rows.Close()

	var out []TransferRecord
	for rows.Next() {
		var r TransferRecord
		var completedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.Filename, &r.Peer, &r.Direction, &r.Bytes, &r.ChunkCount,
			&r.StartedAt, &completedAt, &r.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("store: scan transfer row: %w", err)
		}
		if completedAt.Valid {
			r.CompletedAt = &completedAt.Time
		}
		r.Error = errMsg.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent transfers: %w", err)
	}
	return out, nil
}

// CountByStatus returns how many rows currently carry each status, used
// by the /api/v1/stats endpoint.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM transfers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("store: count by status: %w", err)
	}
	defer rows.Close()

	counts := map[Status]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("store: count by status: %w", err)
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}
