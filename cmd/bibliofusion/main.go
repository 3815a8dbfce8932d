// Package main provides the bibliofusion command that merges Web of Science and Scopus exports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information populated at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
