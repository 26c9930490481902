// Package cli implements the hotel command line interface.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/boutique-hotel-client/pkg/metrics"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger

// NewRootCmd creates the root command. Subcommands share one app, which is
// wired in PersistentPreRunE once flags are parsed.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "hotel",
		Short:         "Browse rooms and manage bookings at the boutique hotel",
		Long:          "hotel: check room availability, book stays and manage your account against the boutique hotel API",
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			if a.flags.metricsDump {
				if err := metrics.Dump(cmd.ErrOrStderr()); err != nil {
					return fmt.Errorf("dump metrics: %w", err)
				}
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.apiURL, "api-url", "", "hotel API base URL (overrides HOTEL_API_URL)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	f.BoolVarP(&a.flags.quiet, "quiet", "q", false, "disable logging")
	f.StringVarP(&a.flags.output, "output", "o", formatTable, "output format: table, json, yaml")
	f.BoolVar(&a.flags.metricsDump, "metrics-dump", false, "print collected metrics to stderr after the command")

	cmd.AddCommand(
		newRoomsCmd(a),
		newBookingsCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newLogoutCmd(a),
		newAboutCmd(),
		newImpressumCmd(),
	)

	return cmd
}

const rootCmdExample = `  # List rooms, five per page
  hotel rooms list

  # Show the second page with ten rooms per page
  hotel rooms list --page 2 --page-size 10

  # Rooms available for a stay
  hotel rooms available --from 2025-05-01 --to 2025-05-04

  # Page through rooms interactively
  hotel rooms browse

  # Book a room
  hotel bookings create --room 3 --from 2025-05-01 --to 2025-05-04 \
    --firstname Ada --lastname Lovelace --email ada@example.com --birthdate 1815-12-10

  # Sign in and show the current user as YAML
  hotel login --client-id ada --secret s3cret
  hotel whoami -o yaml`
