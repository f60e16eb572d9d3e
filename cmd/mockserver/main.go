package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vitalvas/faux/internal/logging"
)

// Version information set at build time.
var (
	commit = "none"
	date   = "unknown"
)

type globalOptions struct {
	logLevel  string
	logFormat string
}

func (o *globalOptions) logger() zerolog.Logger {
	return logging.Configure(logging.Config{
		Level:  o.logLevel,
		Format: o.logFormat,
	})
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mockserver",
		Short: "Serve mock REST routes from fixture files",
		Long: `mockserver answers REST requests from routes declared in YAML
fixture files, optionally backed by an in-memory or Redis record store.

Examples:
  mockserver serve -f books.yaml
  mockserver serve -f books.yaml --collection authors --redis-addr localhost:6379
  mockserver routes -f books.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatConsole, "Log format (json, console)")

	rootCmd.AddCommand(
		serveCmd(opts),
		routesCmd(),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
