package cmd

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"fleetdeck/internal/config"
	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/prompt"
)

// newConfigPrompter supplies the prompter behind config set --ask.
var newConfigPrompter = func() fleetcli.Prompter { return prompt.NewTerminal() }

// newConfigCmd creates the settings commands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change fleetdeck settings",
		Long: `Reads and changes the settings in config.yaml. Setting a key to an
empty value restores its default.

Examples:
  fleetdeck config list
  fleetdeck config set defaultApp billing-api
  fleetdeck config set clientSecret --ask
  fleetdeck config get schemaMatch`,
	}

	keys := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "get <key>",
		Short:             "Print one setting",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			value, err := store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	var ask bool
	setCmd := &cobra.Command{
		Use:               "set <key> [value]",
		Short:             "Change one setting",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			value := ""
			switch {
			case len(args) == 2:
				if ask {
					return errors.New("--ask takes no value argument")
				}
				value = args[1]
			case ask:
				if _, err := store.Get(args[0]); err != nil {
					return err
				}
				value, err = newConfigPrompter().Ask(cmd.Context(), fleetcli.Question{
					Key:      args[0],
					Prompt:   fmt.Sprintf("%s (%s)", args[0], config.Describe(args[0])),
					Required: true,
					Secret:   config.IsSecret(args[0]),
				})
				if err != nil {
					return err
				}
			}
			if err := store.Set(args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated in %s\n", args[0], store.File())
			return nil
		},
	}
	setCmd.Flags().BoolVar(&ask, "ask", false, "Prompt for the value; secret settings are read without echo")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}
			printSettings(cmd, store, entries)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.File())
			return nil
		},
	})

	return cmd
}

func printSettings(cmd *cobra.Command, store *config.Store, entries []config.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.SetTitle(store.File())
	t.AppendHeader(table.Row{"Key", "Value", "Description"})
	for _, e := range entries {
		value := e.Value
		if value == "" {
			value = text.FgHiBlack.Sprint("(unset)")
		}
		t.AppendRow(table.Row{e.Key, value, e.Description})
	}
	t.Render()
}
