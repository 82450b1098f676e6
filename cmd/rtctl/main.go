// Package main is the entry point for the rtctl CLI.
//
// rtctl manages route-target based connectivity between virtual networks
// stored in an OpenContrail config API. It resolves networks by uuid or
// fully qualified name, allocates route-target keys, and attaches or
// detaches them from routing instances.
//
// For detailed usage information, run:
//
//	rtctl --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/rtctl/cmd/rtctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
