// Package storage abstracts the database dialect behind the work-item
// store. Adapters own connection setup and schema DDL; all row-level
// operations live in the root package and stay dialect-neutral through
// sqlbuilder placeholders.
package storage

import (
	"context"
	"database/sql"

	"github.com/worklens/worklens/worklens/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	Placeholder() sqlbuilder.PlaceholderStyle

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// Init creates the store tables and stamps the meta markers.
	Init(ctx context.Context, db *sql.DB) error
	// Verify checks that the connected database is a worklens store of a
	// format version this build understands.
	Verify(ctx context.Context, db *sql.DB) error
}

// Meta markers written by Init and checked by Verify.
const (
	MetaMagicKey   = "worklens_magic"
	MetaMagicValue = "worklens"
	MetaVersionKey = "worklens_version"
	MetaVersion    = "1"
)
