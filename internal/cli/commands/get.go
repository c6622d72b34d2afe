package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/worklens/worklens/internal/cliopt"
	"github.com/worklens/worklens/internal/cliutil"
)

func RunGet(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var id string
	fs.StringVar(&id, "id", "", "item id")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if id == "" {
		fmt.Fprintln(os.Stderr, "missing item id")
		return 2
	}

	ctx := context.Background()
	store, err := cliutil.OpenStore(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	it, err := store.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cliutil.PrintJSON(os.Stdout, it)
	return 0
}

func RunRm(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var id string
	fs.StringVar(&id, "id", "", "item id")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if id == "" {
		fmt.Fprintln(os.Stderr, "missing item id")
		return 2
	}

	ctx := context.Background()
	store, err := cliutil.OpenStore(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if err := store.Delete(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "deleted %s\n", id)
	return 0
}
