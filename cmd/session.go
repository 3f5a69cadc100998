package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/config"
	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/guide"
	"fleetdeck/internal/output"
	"fleetdeck/internal/prompt"
	"fleetdeck/internal/status"
	"fleetdeck/pkg/logging"
)

const cliSubsystem = "CLI"

// session holds the objects one terminal command works with.
type session struct {
	store    *config.Store
	registry *actions.Registry
	channel  *output.Channel
	status   *status.Indicator
	prompter prompt.Prompter
	runner   *fleetcli.Runner
	errOut   io.Writer
}

// openStore returns the store for --config-path or the default location.
func openStore() (*config.Store, error) {
	path := rootConfigPath
	if path == "" {
		var err error
		path, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.NewStore(path), nil
}

func logLevel(settings config.Settings) logging.LogLevel {
	if rootDebug || settings.VerboseLogging {
		return logging.LevelDebug
	}
	return logging.LevelWarn
}

// newSession wires a runner to the terminal: output goes to the command's
// stdout, prompts and the spinner to its stderr.
func newSession(cmd *cobra.Command) (*session, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	return newSessionWith(cmd, store, prompt.NewTerminal(), cmd.OutOrStdout())
}

// newSessionWith is newSession with an explicit prompter and log writer.
// Commands that print machine-readable stdout send the log to stderr.
func newSessionWith(cmd *cobra.Command, store *config.Store, prompter prompt.Prompter, logOut io.Writer) (*session, error) {
	settings, err := store.Settings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	logging.InitForCLI(logLevel(settings), cmd.ErrOrStderr())

	channel := output.NewChannel(logOut)
	if settings.LogFile != "" {
		if err := channel.OpenLogFile(settings.LogFile); err != nil {
			logging.Warn(cliSubsystem, "Cannot open log file %s: %v", settings.LogFile, err)
		}
	}

	s := &session{
		store:    store,
		registry: actions.DefaultRegistry(),
		channel:  channel,
		status:   status.New(cmd.ErrOrStderr(), rootQuiet),
		prompter: prompter,
		errOut:   cmd.ErrOrStderr(),
	}
	s.runner = fleetcli.NewRunner(fleetcli.RunnerOptions{
		Settings: store.Settings,
		Prompter: s.prompter,
		Sink:     channel,
		Status:   s.status,
	})
	return s, nil
}

func (s *session) close() {
	if err := s.channel.Close(); err != nil {
		logging.Warn(cliSubsystem, "Closing log file: %v", err)
	}
}

// runAction runs one action and turns a failed start into the install guide.
func (s *session) runAction(ctx context.Context, action actions.Action, in actions.Invocation) error {
	result, err := s.runner.Run(ctx, action.Request(in))
	if err != nil {
		var spawn *fleetcli.SpawnError
		if errors.As(err, &spawn) {
			return s.diagnose(ctx, err)
		}
		return err
	}
	if !result.OK() {
		return fmt.Errorf("%s exited with code %d", action.Subcommand, result.ExitCode)
	}
	return nil
}

// diagnose checks the prerequisites after the tool failed to start. When
// they are in place the original error is returned.
func (s *session) diagnose(ctx context.Context, cause error) error {
	_, err := s.runner.CheckPrerequisites(ctx)
	var missing *fleetcli.MissingPrerequisiteError
	if errors.As(err, &missing) {
		return s.offerGuide(ctx, missing)
	}
	return cause
}

// offerGuide lets the user install the plugin or read the install guide.
// The failed command is not retried.
func (s *session) offerGuide(ctx context.Context, missing *fleetcli.MissingPrerequisiteError) error {
	outcome, err := guide.New(s.prompter, s.runner, s.errOut).Handle(ctx, missing)
	if err != nil {
		return fmt.Errorf("%s: %w", missing.Error(), err)
	}
	logging.Info(cliSubsystem, "Install guide finished: %s", outcome)
	switch outcome {
	case guide.OutcomeInstalled:
		s.status.Notice(fmt.Sprintf("%s installed, run the command again", fleetcli.PluginPackage))
		return nil
	case guide.OutcomeCanceled:
		return fleetcli.ErrCanceled
	default:
		return missing
	}
}

// shellJoin quotes args so that shellwords splits them back unchanged.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'\"\\$`") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
