package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/status"
)

// newCheckCmd creates the command that verifies the fleet CLI and link plugin.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the fleet CLI and the link plugin are installed",
		Long: `Looks for the fleet CLI and asks it for its plugins. When either is
missing, fleetdeck offers to install the plugin or shows the install guide.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			plugin, err := s.runner.CheckPrerequisites(cmd.Context())
			if err != nil {
				var missing *fleetcli.MissingPrerequisiteError
				if errors.As(err, &missing) {
					fmt.Fprintln(cmd.ErrOrStderr(), status.Format(false, missing.Error()))
					return s.offerGuide(cmd.Context(), missing)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.Format(true, fmt.Sprintf("%s %s", plugin.Name, plugin.Version)))
			return nil
		},
	}
}
