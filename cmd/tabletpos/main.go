// Command tabletpos recomputes the derived position fields of transliterated
// tablets stored in a SQLite database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/tabletpos/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
