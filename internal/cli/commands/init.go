package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/worklens/worklens/internal/cliopt"
	"github.com/worklens/worklens/internal/cliutil"
)

func RunInit(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	store, err := cliutil.CreateStore(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	fmt.Fprintf(os.Stdout, "initialized %s store\n", store.Backend())
	return 0
}
