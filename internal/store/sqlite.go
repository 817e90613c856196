package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite persists answers one row per slot.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the database at path and applies embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	// foreign_keys is per connection; one connection keeps it applied.
	sqlDB.SetMaxOpenConns(1)
	if _, err = sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err = applyMigrations(ctx, sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces every slot of session id in one transaction.
func (s *SQLite) Save(ctx context.Context, id string, answers []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM answers WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO answer_sets (session_id, slot_count, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET slot_count = excluded.slot_count, updated_at = excluded.updated_at`,
		id, len(answers), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert answer set: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO answers (session_id, position, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare slot insert: %w", err)
	}
	defer stmt.Close()
	for pos, value := range answers {
		if _, err = stmt.ExecContext(ctx, id, pos, value); err != nil {
			return fmt.Errorf("insert slot %d: %w", pos, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load returns the slots of session id in position order.
func (s *SQLite) Load(ctx context.Context, id string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	var count int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT slot_count FROM answer_sets WHERE session_id = ?`, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load answer set: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT position, value FROM answers WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	defer rows.Close()

	answers := make([]string, count)
	for rows.Next() {
		var (
			pos   int
			value string
		)
		if err = rows.Scan(&pos, &value); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if pos < 0 || pos >= count {
			return nil, fmt.Errorf("%w: slot %d outside answer set of %d", ErrStoreCorrupted, pos, count)
		}
		answers[pos] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return answers, nil
}

// Clear deletes session id and its slots in one transaction.
func (s *SQLite) Clear(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM answers WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM answer_sets WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear answer set: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// Sessions returns the update time of every stored session.
func (s *SQLite) Sessions(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT session_id, updated_at FROM answer_sets`)
	if err != nil {
		return nil, fmt.Errorf("list answer sets: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var (
			id        string
			updatedAt int64
		)
		if err = rows.Scan(&id, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan answer set: %w", err)
		}
		out[id] = time.UnixMilli(updatedAt).UTC()
	}
	return out, rows.Err()
}
