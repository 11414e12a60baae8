package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PagodaAdmin/PagodaAdmin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user, the booking defaults and the configured seed settings",
	Long: `Seed writes the rows the start command writes on boot. Existing rows are
kept. A generated admin password is printed once, store it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			admin, err := d.Seed(cmd.Context(), &cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			out := cmd.OutOrStdout()

			switch {
			case admin.Password != "":
				_, _ = fmt.Fprintf(out, "created admin user %q with password %q, change it\n", admin.Username, admin.Password)
			case admin.Created:
				_, _ = fmt.Fprintf(out, "created admin user %q\n", admin.Username)
			}

			_, _ = fmt.Fprintln(out, "seed done")

			return nil
		})
	},
}
