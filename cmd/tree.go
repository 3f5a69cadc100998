package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/prompt"
	"fleetdeck/internal/tree"
)

// newTreeCmd creates the command that prints connections and authorizations.
func newTreeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "tree [connections|authorizations]",
		Short:     "Show connections and authorizations as a tree",
		Long:      `Lists the link connections and authorizations of the default app. Pass a group name to list only that group.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{actions.GroupConnections, actions.GroupAuthorizations},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			logOut := cmd.OutOrStdout()
			if asJSON {
				logOut = cmd.ErrOrStderr()
			}
			s, err := newSessionWith(cmd, store, prompt.NewTerminal(), logOut)
			if err != nil {
				return err
			}
			defer s.close()

			provider := tree.NewProvider(s.runner, s.registry)
			var roots []*tree.Node
			if len(args) == 1 {
				root, ok := provider.Group(cmd.Context(), args[0])
				if !ok {
					return fmt.Errorf("unknown group %q (valid: %s, %s)", args[0], actions.GroupConnections, actions.GroupAuthorizations)
				}
				roots = []*tree.Node{root}
			} else {
				roots = provider.Refresh(cmd.Context())
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(roots)
			}
			tree.Render(cmd.OutOrStdout(), roots)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the nodes as JSON")
	return cmd
}
