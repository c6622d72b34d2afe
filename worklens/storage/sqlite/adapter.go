package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/worklens/worklens/worklens/storage"
	"github.com/worklens/worklens/worklens/storage/sqlbuilder"
)

// Adapter opens a sqlite-backed store. DriverName selects the registered
// database/sql driver: "sqlite" (modernc, CGO-free, the default) or
// "sqlite3" (mattn). The two drivers spell their DSN pragmas differently,
// so the DSN is built per driver.
type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: "sqlite"}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendSQLite }

func (a *Adapter) Placeholder() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) Close() error { return nil }

func (a *Adapter) dsn() string {
	sep := "?"
	if strings.Contains(a.Path, "?") {
		sep = "&"
	}
	if a.DriverName == "sqlite3" {
		return a.Path + sep + "_busy_timeout=5000&_foreign_keys=on"
	}
	return a.Path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const ddl = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
  id                  TEXT PRIMARY KEY,
  title               TEXT NOT NULL DEFAULT '',
  description         TEXT NOT NULL DEFAULT '',
  status              TEXT NOT NULL DEFAULT 'open',
  priority            INTEGER,
  issue_type          TEXT NOT NULL DEFAULT '',
  assignee            TEXT,
  estimated_minutes   INTEGER,
  external_ref        TEXT,
  source_repo         TEXT,
  created_at          INTEGER NOT NULL,
  created_by          TEXT NOT NULL DEFAULT '',
  updated_at          INTEGER NOT NULL,
  due_date            INTEGER,
  closed_at           INTEGER,
  design              TEXT NOT NULL DEFAULT '',
  acceptance_criteria TEXT NOT NULL DEFAULT '',
  notes               TEXT NOT NULL DEFAULT '',
  labels              TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_updated_at ON items(updated_at);

CREATE TABLE IF NOT EXISTS history (
  id     INTEGER PRIMARY KEY AUTOINCREMENT,
  query  TEXT NOT NULL,
  ran_at INTEGER NOT NULL
);
`

func (a *Adapter) Init(ctx context.Context, db *sql.DB) error {
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	setMeta := `INSERT INTO meta (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := db.ExecContext(ctx, setMeta, storage.MetaMagicKey, storage.MetaMagicValue); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, setMeta, storage.MetaVersionKey, storage.MetaVersion); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) Verify(ctx context.Context, db *sql.DB) error {
	var magic string
	err := db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", storage.MetaMagicKey).Scan(&magic)
	if err != nil {
		return fmt.Errorf("not a worklens store: %w", err)
	}
	if magic != storage.MetaMagicValue {
		return fmt.Errorf("not a worklens store (magic=%q)", magic)
	}

	var version string
	err = db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", storage.MetaVersionKey).Scan(&version)
	if err != nil {
		return fmt.Errorf("store version missing: %w", err)
	}
	if version != storage.MetaVersion {
		return fmt.Errorf("unsupported store version %q (this build reads version %s)", version, storage.MetaVersion)
	}
	return nil
}
