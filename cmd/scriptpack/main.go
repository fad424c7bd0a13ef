package main

import (
	"fmt"
	"os"

	"github.com/teranos/scriptpack/cmd/scriptpack/commands"
	"github.com/teranos/scriptpack/logger"
)

func main() {
	defer logger.Cleanup()

	// Pack outcomes are reported on stdout and never fail the process; only
	// command-line and subcommand errors land here.
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
