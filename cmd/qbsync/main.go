package main

import (
	"fmt"
	"os"

	"github.com/ledgerline/qbsync-cli/internal/adapters/driving/cli"
)

// Build metadata, set via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = ""
)

func main() {
	os.Exit(run())
}

// run keeps os.Exit out of main so deferred cleanup inside Execute runs.
func run() int {
	cli.SetVersion(version)
	cli.SetCommit(commit)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
