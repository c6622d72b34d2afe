package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/worklens/worklens/internal/cliopt"
	"github.com/worklens/worklens/internal/cliutil"
	"github.com/worklens/worklens/worklens/query"
)

func RunSearch(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var q string
	var explain bool
	fs.StringVar(&q, "query", "", "query string")
	fs.StringVar(&q, "q", "", "query string")
	fs.BoolVar(&explain, "explain", false, "print the parsed query before results")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if q == "" && fs.NArg() > 0 {
		q = strings.Join(fs.Args(), " ")
	}

	ctx := context.Background()
	store, err := cliutil.OpenStore(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if explain {
		parsed, perr := query.Parse(q)
		if perr == nil {
			fmt.Fprintf(os.Stderr, "query: %s\n", parsed)
		}
	}

	start := time.Now()
	items, err := store.Search(ctx, q)
	if err != nil {
		printQueryError(os.Stderr, q, err)
		return 1
	}
	elapsed := time.Since(start)

	format := cliutil.ParseOutputFormat(g.Format)
	cliutil.PrintItems(os.Stdout, format, items)
	if format == cliutil.FormatPretty {
		fmt.Fprintf(os.Stdout, "\n%d items in %dms\n", len(items), elapsed.Milliseconds())
	}
	return 0
}

// printQueryError renders a parse failure with a caret under the
// offending offset when one is known.
func printQueryError(w *os.File, input string, err error) {
	var qerr *query.Error
	if !errors.As(err, &qerr) || qerr.Pos < 0 {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, qerr)
	runes := []rune(input)
	if qerr.Pos <= len(runes) {
		fmt.Fprintf(w, "  %s\n", input)
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", qerr.Pos))
	}
}
