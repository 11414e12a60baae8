package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PagodaAdmin/PagodaAdmin/internal/daemon"
	"github.com/PagodaAdmin/PagodaAdmin/internal/settings"
)

func init() { //nolint: gochecknoinits
	settingSetCmd.Flags().StringVarP(&setType, "type", "t", string(settings.TypeString),
		"value type: string, integer, boolean or json")
	settingSetCmd.Flags().StringVarP(&setDescription, "description", "d", "", "description stored with the value")
	settingSetCmd.Flags().BoolVar(&setSystem, "system", false, "mark the setting as system, it can not be deleted")
	settingDeleteCmd.Flags().BoolVar(&deleteForce, "force", false, "delete system settings too")

	settingCmd.AddCommand(settingGetCmd, settingSetCmd, settingListCmd, settingDeleteCmd)
	rootCmd.AddCommand(settingCmd)
}

var (
	setType        string
	setDescription string
	setSystem      bool
	deleteForce    bool

	settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Read and write settings directly in the database",
	}

	settingGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Print the decoded value of a setting as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(cmd, func(d *daemon.Daemon) error {
				row, err := d.Repository.Find(cmd.Context(), args[0])
				if err != nil {
					return err //nolint:wrapcheck
				}

				value, err := settings.Decode(row)
				if err != nil {
					return err //nolint:wrapcheck
				}

				return printJSON(cmd.OutOrStdout(), value)
			})
		},
	}

	settingSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or replace a setting",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			vt, err := settings.ParseValueType(setType)
			if err != nil {
				return err //nolint:wrapcheck
			}

			opts := []settings.Option{}
			if cmd.Flags().Changed("description") {
				opts = append(opts, settings.WithDescription(setDescription))
			}

			if cmd.Flags().Changed("system") {
				opts = append(opts, settings.WithSystem(setSystem))
			}

			return withDaemon(cmd, func(d *daemon.Daemon) error {
				row, errSet := d.Store.Set(cmd.Context(), args[0], vt.FromText(args[1]), vt, opts...)
				if errSet != nil {
					return errSet //nolint:wrapcheck
				}

				_, errPrint := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", row.Key, row.RawValue, row.ValueType)

				return errPrint //nolint:wrapcheck
			})
		},
	}

	settingListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDaemon(cmd, func(d *daemon.Daemon) error {
				rows, err := d.Repository.List(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd
				_, _ = fmt.Fprintln(tw, "KEY\tTYPE\tSYSTEM\tVALUE\tDESCRIPTION")

				for i := range rows {
					r := &rows[i]
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", r.Key, r.ValueType, r.IsSystem, r.RawValue, r.Description)
				}

				return tw.Flush() //nolint:wrapcheck
			})
		},
	}

	settingDeleteCmd = &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(cmd, func(d *daemon.Daemon) error {
				if deleteForce {
					return d.Repository.ForceDelete(cmd.Context(), args[0]) //nolint:wrapcheck
				}

				return d.Repository.Delete(cmd.Context(), args[0]) //nolint:wrapcheck
			})
		},
	}
)

// withDaemon opens the storage for one command and closes it afterwards.
// Nothing is seeded, reads stay free of writes.
func withDaemon(cmd *cobra.Command, fn func(d *daemon.Daemon) error) error {
	d, err := daemon.Open(cmd.Context(), &cfg)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return d.Close(fn(d))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v) //nolint:wrapcheck
}
