package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleetdeck/internal/actions"
)

// newRunCmd creates the command that runs a single action.
func newRunCmd() *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:   "run <action> [values...] [-- extra flags]",
		Short: "Run one fleet link action",
		Long: `Runs a fleet link action by ID, alias or subcommand. Values fill the
action's positional arguments in order; anything missing is prompted for.
Arguments after -- are passed to the fleet tool as they are.

Examples:
  fleetdeck run connections.list
  fleetdeck run targets.create staging -a billing-api
  fleetdeck run publish -- --wait`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return actions.DefaultRegistry().Completions(toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name, values, trailing := splitRunArgs(args, cmd.ArgsLenAtDash())

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			action, ok := s.registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown action %q, see 'fleetdeck palette' and type help", name)
			}
			return s.runAction(cmd.Context(), action, actions.Invocation{
				Values:   values,
				App:      app,
				Trailing: shellJoin(trailing),
			})
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "App to run against (default: the defaultApp setting)")
	return cmd
}

// splitRunArgs separates the action name, its positional values and the
// arguments after "--". dash is cobra's ArgsLenAtDash.
func splitRunArgs(args []string, dash int) (name string, values, trailing []string) {
	if len(args) == 0 {
		return "", nil, nil
	}
	if dash == 0 {
		// "--" before the action name; treat the first trailing word as the name.
		return args[0], nil, args[1:]
	}
	rest := args[1:]
	if dash > 0 {
		values = rest[:dash-1]
		trailing = rest[dash-1:]
		return args[0], values, trailing
	}
	return args[0], rest, nil
}
