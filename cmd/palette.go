package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/config"
	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/prompt"
	"fleetdeck/internal/status"
	"fleetdeck/internal/tree"
	"fleetdeck/pkg/logging"
	fdstrings "fleetdeck/pkg/strings"
)

const paletteSubsystem = "Palette"

// errPaletteExit ends the palette loop.
var errPaletteExit = errors.New("exit")

// Palette commands that are not actions.
var paletteBuiltins = []string{"help", "tree", "check", "exit"}

// newPaletteCmd creates the interactive command palette.
func newPaletteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Pick and run fleet link actions interactively",
		Long: `Opens a prompt with TAB completion over every fleet link action.
Type an action followed by its values, for example:

  connections.info prod-org
  targets.create staging -- --wait

Other commands: help, tree [group], check, exit. Ctrl-C at a question
cancels the action; Ctrl-D leaves the palette.`,
		Args: cobra.NoArgs,
		RunE: runPalette,
	}
}

type palette struct {
	s   *session
	out io.Writer
}

func runPalette(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	registry := actions.DefaultRegistry()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "fleet link> ",
		HistoryFile:            filepath.Join(store.Path(), "palette_history"),
		AutoComplete:           paletteCompleter(registry),
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		HistorySearchFold:      true,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	s, err := newSessionWith(cmd, store, prompt.NewTerminalOn(rl), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.close()
	s.registry = registry

	watcher := config.NewWatcher(store, func(config.Settings) {
		logging.Info(paletteSubsystem, "Settings reloaded from %s", store.File())
		s.status.Notice("settings reloaded")
	})
	if err := watcher.Start(); err != nil {
		logging.Debug(paletteSubsystem, "Not watching settings: %v", err)
	} else {
		defer watcher.Stop()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := &palette{s: s, out: cmd.OutOrStdout()}
	fmt.Fprintln(p.out, "Type 'help' for the list of actions. Use TAB for completion.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if err := rl.SaveHistory(input); err != nil {
			logging.Debug(paletteSubsystem, "Saving history: %v", err)
		}

		if err := p.execute(ctx, input); err != nil {
			if errors.Is(err, errPaletteExit) {
				return nil
			}
			p.report(err)
		}
	}
}

// paletteCompleter completes builtins and every action ID, alias and
// subcommand the registry reports.
func paletteCompleter(registry *actions.Registry) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range paletteBuiltins {
		if name == "tree" {
			items = append(items, readline.PcItem(name,
				readline.PcItem(actions.GroupConnections),
				readline.PcItem(actions.GroupAuthorizations),
			))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	for _, name := range registry.AllCompletions() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// execute runs one palette line.
func (p *palette) execute(ctx context.Context, input string) error {
	words, err := shellwords.Parse(input)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", input, err)
	}
	if len(words) == 0 {
		return nil
	}

	switch strings.ToLower(words[0]) {
	case "exit", "quit":
		return errPaletteExit
	case "help", "?":
		p.printHelp()
		return nil
	case "tree":
		return p.showTree(ctx, words[1:])
	case "check":
		plugin, err := p.s.runner.CheckPrerequisites(ctx)
		if err != nil {
			var missing *fleetcli.MissingPrerequisiteError
			if errors.As(err, &missing) {
				return p.s.offerGuide(ctx, missing)
			}
			return err
		}
		fmt.Fprintln(p.out, status.Format(true, fmt.Sprintf("%s %s", plugin.Name, plugin.Version)))
		return nil
	}

	action, ok := p.s.registry.Get(words[0])
	if !ok {
		return fmt.Errorf("unknown action %q, type 'help' for the list", words[0])
	}
	values, trailing := splitAtDash(words[1:])
	return p.s.runAction(ctx, action, actions.Invocation{
		Values:   values,
		Trailing: shellJoin(trailing),
	})
}

// report prints a failed line. Cancellations and missing input are quiet;
// the runner has already said what happened.
func (p *palette) report(err error) {
	var missingInput *fleetcli.MissingInputError
	switch {
	case errors.Is(err, fleetcli.ErrCanceled):
		p.s.status.Notice("canceled")
	case errors.As(err, &missingInput):
		logging.Debug(paletteSubsystem, "Action abandoned: %v", err)
	default:
		fmt.Fprintln(p.s.errOut, status.Format(false, err.Error()))
	}
}

func (p *palette) printHelp() {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Action", "Title", "Subcommand", "Description"})
	for _, a := range p.s.registry.List() {
		t.AppendRow(table.Row{a.ID, a.Title(), a.Subcommand, fdstrings.Truncate(a.Description, fdstrings.DescriptionMaxLen)})
	}
	t.Render()
	fmt.Fprintf(p.out, "Also: %s\n", strings.Join(paletteBuiltins, ", "))
}

func (p *palette) showTree(ctx context.Context, args []string) error {
	provider := tree.NewProvider(p.s.runner, p.s.registry)
	if len(args) == 0 {
		tree.Render(p.out, provider.Refresh(ctx))
		return nil
	}
	root, ok := provider.Group(ctx, args[0])
	if !ok {
		return fmt.Errorf("unknown group %q", args[0])
	}
	tree.Render(p.out, []*tree.Node{root})
	return nil
}

// splitAtDash splits words at the first "--", which is dropped.
func splitAtDash(words []string) (before, after []string) {
	for i, w := range words {
		if w == "--" {
			return words[:i], words[i+1:]
		}
	}
	return words, nil
}
