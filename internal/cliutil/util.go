package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/worklens/worklens/internal/cliopt"
	"github.com/worklens/worklens/worklens"
	"github.com/worklens/worklens/worklens/storage"
	"github.com/worklens/worklens/worklens/storage/postgres"
	"github.com/worklens/worklens/worklens/storage/sqlite"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatIDs    OutputFormat = "ids"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatIDs, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// AdapterFor builds the storage adapter the global options describe.
func AdapterFor(g cliopt.GlobalOptions) (storage.Adapter, error) {
	switch strings.ToLower(g.Backend) {
	case "sqlite", "":
		return sqlite.NewWithDriver(g.DBPath, g.SQLiteDriver), nil
	case "postgres":
		if g.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires --pg-dsn")
		}
		return postgres.New(g.PostgresDSN, g.PostgresSchema), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", g.Backend)
	}
}

// OpenStore opens an existing store per the global options.
func OpenStore(ctx context.Context, g cliopt.GlobalOptions) (*worklens.Store, error) {
	a, err := AdapterFor(g)
	if err != nil {
		return nil, err
	}
	return worklens.Open(ctx, a, worklens.DefaultStoreOptions())
}

// CreateStore creates (or re-opens) a store per the global options.
func CreateStore(ctx context.Context, g cliopt.GlobalOptions) (*worklens.Store, error) {
	a, err := AdapterFor(g)
	if err != nil {
		return nil, err
	}
	return worklens.Create(ctx, a, worklens.DefaultStoreOptions())
}

// PrintItems renders items in the requested format.
func PrintItems(w io.Writer, format OutputFormat, items []*worklens.Item) {
	switch format {
	case FormatJSON:
		PrintJSON(w, items)
	case FormatIDs:
		for _, it := range items {
			fmt.Fprintln(w, it.ID)
		}
	default:
		for _, it := range items {
			pri := "-"
			if it.Priority != nil {
				pri = fmt.Sprintf("p%d", *it.Priority)
			}
			assignee := ""
			if it.Assignee != nil && *it.Assignee != "" {
				assignee = " @" + *it.Assignee
			}
			fmt.Fprintf(w, "%-12s %-12s %-3s %s%s\n", it.ID, it.Status, pri, it.Title, assignee)
		}
	}
}
