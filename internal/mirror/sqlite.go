package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/platform/timeutil"
	"github.com/janisto/profile-playground/internal/profile"
)

const schema = `CREATE TABLE IF NOT EXISTS mirror (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteMirror stores the slot as one row of a key/value table.
type SQLiteMirror struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteMirror, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("mirror path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; a single connection avoids SQLITE_BUSY between pooled handles.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create mirror table: %w", err)
	}
	return &SQLiteMirror{db: db}, nil
}

// Close closes the database handle.
func (m *SQLiteMirror) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Load implements Mirror.
func (m *SQLiteMirror) Load(ctx context.Context) (*profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m == nil || m.db == nil {
		return nil, errors.New("mirror is not configured")
	}

	var (
		value     string
		updatedAt int64
	)
	err := m.db.QueryRowContext(ctx, `SELECT value, updated_at FROM mirror WHERE key = ?`, Key).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", Key, err)
	}

	p, err := decode([]byte(value))
	if err != nil {
		return discardCorrupt(ctx, m, "sqlite", err)
	}
	logging.LoggerFromContext(ctx).Debug("mirror hit", zap.Stringer("saved_at", timeutil.FromUnixMilli(updatedAt)))
	return p, nil
}

// Save implements Mirror.
func (m *SQLiteMirror) Save(ctx context.Context, p profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || m.db == nil {
		return errors.New("mirror is not configured")
	}
	data, err := encode(p)
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO mirror (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Key, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", Key, err)
	}
	return nil
}

// Clear implements Mirror.
func (m *SQLiteMirror) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || m.db == nil {
		return errors.New("mirror is not configured")
	}
	if _, err := m.db.ExecContext(ctx, `DELETE FROM mirror WHERE key = ?`, Key); err != nil {
		return fmt.Errorf("clear %s: %w", Key, err)
	}
	return nil
}
