package cliopt

import "flag"

// GlobalOptions are parsed once at the CLI root and passed to
// subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the
// root command router and per-command code.
type GlobalOptions struct {
	Backend        string
	DBPath         string
	SQLiteDriver   string
	PostgresDSN    string
	PostgresSchema string

	Format string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:        "sqlite",
		DBPath:         "worklens.db",
		SQLiteDriver:   "sqlite",
		PostgresSchema: "worklens",
		Format:         "pretty",
	}
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")

	fs.StringVar(&g.DBPath, "db", g.DBPath, "sqlite database file path")
	fs.StringVar(&g.SQLiteDriver, "sqlite-driver", g.SQLiteDriver, "sqlite driver: sqlite (modernc) | sqlite3 (mattn)")

	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema name")

	fs.StringVar(&g.Format, "format", g.Format, "output format: pretty|ids|json")
}
