// Package main is the entry point for the fittings CLI.
//
// fittings adjusts live Hetzner Cloud servers to a declarative plan: cpu
// and memory, additional disks, monitoring and network membership. Every
// change it makes is written to a spit report.
//
// Commands: polish, terraform apply, terraform graph, version.
//
// For detailed usage information, run:
//
//	fittings --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/fittings/cmd/fittings/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
