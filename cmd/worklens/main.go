package main

import (
	"os"

	"github.com/worklens/worklens/internal/cli"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
