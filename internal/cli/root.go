package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/worklens/worklens/internal/cli/commands"
	"github.com/worklens/worklens/internal/cliopt"
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	globalFS := flag.NewFlagSet("worklens", flag.ContinueOnError)
	globalFS.SetOutput(os.Stderr)
	g := cliopt.DefaultGlobalOptions()
	cliopt.BindGlobalFlags(globalFS, &g)

	if err := globalFS.Parse(argv); err != nil {
		// flag package already printed the error
		return 2
	}

	args := globalFS.Args()
	if len(args) == 0 {
		PrintRootHelp(os.Stdout)
		return 0
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "--help", "-h", "help":
		PrintRootHelp(os.Stdout)
		return 0
	case "init":
		return commands.RunInit(g, rest)
	case "add":
		return commands.RunAdd(g, rest)
	case "get":
		return commands.RunGet(g, rest)
	case "rm":
		return commands.RunRm(g, rest)
	case "search":
		return commands.RunSearch(g, rest)
	case "history":
		return commands.RunHistory(g, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", verb)
		PrintRootHelp(os.Stderr)
		return 2
	}
}

// PrintRootHelp writes the root usage text.
func PrintRootHelp(w io.Writer) {
	fmt.Fprintln(w, "worklens - query, filter and sort work items")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  worklens [global flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init      create a new store")
	fmt.Fprintln(w, "  add       add or update a work item")
	fmt.Fprintln(w, "  get       fetch one item by id")
	fmt.Fprintln(w, "  rm        delete one item by id")
	fmt.Fprintln(w, "  search    run a query, e.g. 'status:open AND priority:0..1 sort by: priority asc'")
	fmt.Fprintln(w, "  history   show recent queries")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  --backend sqlite|postgres   storage backend (default sqlite)")
	fmt.Fprintln(w, "  --db <path>                 sqlite database file (default worklens.db)")
	fmt.Fprintln(w, "  --sqlite-driver <name>      sqlite | sqlite3")
	fmt.Fprintln(w, "  --pg-dsn <dsn>              postgres connection string")
	fmt.Fprintln(w, "  --pg-schema <name>          postgres schema (default worklens)")
	fmt.Fprintln(w, "  --format pretty|ids|json    output format")
}
