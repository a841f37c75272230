package main

import (
	"fmt"
	"io"
	"os"

	"github.com/molsim/deckgen/internal/cli"
)

// main is the entrypoint for the deckgen application.
func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and
// error handling.
func run(outW, errW io.Writer, args []string) error {
	return cli.Execute(args, outW, errW)
}
