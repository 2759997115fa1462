// Command rentura-report ranks risky lease clauses from the terminal.
package main

import (
	"os"

	"github.com/okian/rentura/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
