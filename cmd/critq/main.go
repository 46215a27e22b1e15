// Command critq compiles filter documents into SQLite queries.
package main

import (
	"os"

	"github.com/roach88/critq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
