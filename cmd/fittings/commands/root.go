// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/imamik/fittings/internal/logging"
)

type logFlags struct {
	level string
	json  bool
	file  string
}

// Root returns the root command for the fittings CLI.
//
// The root command owns the logging flags, which every subcommand inherits.
func Root() *cobra.Command {
	var (
		flags  logFlags
		closer io.Closer
	)

	cmd := &cobra.Command{
		Use:           "fittings",
		Short:         "Polish live Hetzner Cloud servers to a declared plan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(flags.level)
			if err != nil {
				return err
			}
			closer, err = logging.Init(logging.Config{
				Level:      level,
				JSONOutput: flags.json,
				File:       flags.file,
			})
			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if closer == nil {
				return nil
			}
			return closer.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.level, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&flags.json, "log-json", false, "Log JSON lines instead of console output")
	cmd.PersistentFlags().StringVar(&flags.file, "log-file", "", "Also write JSON logs to this file, rotated")

	cmd.AddCommand(Polish())
	cmd.AddCommand(Terraform())
	cmd.AddCommand(Version())

	return cmd
}
