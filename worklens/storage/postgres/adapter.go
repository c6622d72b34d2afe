package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/worklens/worklens/worklens/storage"
	"github.com/worklens/worklens/worklens/storage/sqlbuilder"
)

// Adapter opens a postgres-backed store inside a dedicated schema pinned
// via search_path.
type Adapter struct {
	DSN    string
	Schema string
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) Placeholder() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderDollar
}

func (a *Adapter) Close() error { return nil }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

func (a *Adapter) ensureSchema(ctx context.Context, db *sql.DB) error {
	if a.Schema == "" || !schemaNameRe.MatchString(a.Schema) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", a.Schema, schemaNameRe.String())
	}
	_, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema))
	return err
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	// 1) Connect without search_path to ensure the schema exists
	cfg0, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	db0 := stdlib.OpenDB(*cfg0)
	if err := db0.PingContext(ctx); err != nil {
		_ = db0.Close()
		return nil, err
	}
	if err := a.ensureSchema(ctx, db0); err != nil {
		_ = db0.Close()
		return nil, err
	}
	_ = db0.Close()

	// 2) Connect with search_path pinned to the schema
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["search_path"] = fmt.Sprintf("%s,public", quoteIdent(a.Schema))

	db := stdlib.OpenDB(*cfg)
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
  priority            BIGINT,
  issue_type          TEXT NOT NULL DEFAULT '',
  assignee            TEXT,
  estimated_minutes   BIGINT,
  external_ref        TEXT,
  source_repo         TEXT,
  created_at          BIGINT NOT NULL,
  created_by          TEXT NOT NULL DEFAULT '',
  updated_at          BIGINT NOT NULL,
  due_date            BIGINT,
  closed_at           BIGINT,
  design              TEXT NOT NULL DEFAULT '',
  acceptance_criteria TEXT NOT NULL DEFAULT '',
  notes               TEXT NOT NULL DEFAULT '',
  labels              TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_updated_at ON items(updated_at);

CREATE TABLE IF NOT EXISTS history (
  id     BIGSERIAL PRIMARY KEY,
  query  TEXT NOT NULL,
  ran_at BIGINT NOT NULL
);
`

func (a *Adapter) Init(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	setMeta := `INSERT INTO meta (key, value) VALUES ($1, $2)
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
	err := db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = $1", storage.MetaMagicKey).Scan(&magic)
	if err != nil {
		return fmt.Errorf("not a worklens store: %w", err)
	}
	if magic != storage.MetaMagicValue {
		return fmt.Errorf("not a worklens store (magic=%q)", magic)
	}

	var version string
	err = db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = $1", storage.MetaVersionKey).Scan(&version)
	if err != nil {
		return fmt.Errorf("store version missing: %w", err)
	}
	if version != storage.MetaVersion {
		return fmt.Errorf("unsupported store version %q (this build reads version %s)", version, storage.MetaVersion)
	}
	return nil
}
