// Command quizrally-cli inspects and maintains quizrally data files and
// administers a running quizrally-server.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/quizrally-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
