// Command sqlmongo runs SQL SELECT queries against document stores.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sqlmongo/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
