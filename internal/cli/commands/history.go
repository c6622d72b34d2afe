package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/worklens/worklens/internal/cliopt"
	"github.com/worklens/worklens/internal/cliutil"
)

func RunHistory(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var limit int
	var clear bool
	fs.IntVar(&limit, "n", 20, "number of entries")
	fs.BoolVar(&clear, "clear", false, "clear the history")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	store, err := cliutil.OpenStore(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if clear {
		if err := store.ClearHistory(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintln(os.Stdout, "history cleared")
		return 0
	}

	entries, err := store.History(ctx, limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, entries)
		return 0
	}
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%s  %s\n", e.RanAt.Format(time.DateTime), e.Query)
	}
	return 0
}
