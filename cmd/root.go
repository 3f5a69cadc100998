package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"fleetdeck/internal/fleetcli"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error, including a fleet command
	// that exited non-zero.
	ExitCodeError = 1
	// ExitCodeMissingPrerequisite indicates the fleet CLI or its link plugin
	// is not installed.
	ExitCodeMissingPrerequisite = 2
	// ExitCodeCanceled indicates the user dismissed a prompt.
	ExitCodeCanceled = 3
)

var (
	rootConfigPath string
	rootDebug      bool
	rootQuiet      bool
)

// rootCmd represents the base command for the fleetdeck application.
var rootCmd = &cobra.Command{
	Use:   "fleetdeck",
	Short: "Run fleet link commands from a palette, a tree or your editor",
	Long: `fleetdeck wraps the fleet CLI and its link plugin. It works out which
flags each link subcommand accepts, prompts for what is missing, fills in
your configured defaults and streams the output to one log.

Use 'fleetdeck palette' for an interactive prompt, 'fleetdeck run' for a
single action and 'fleetdeck serve' to expose the actions to an editor over MCP.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fleetdeck version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var missing *fleetcli.MissingPrerequisiteError
	if errors.As(err, &missing) {
		return ExitCodeMissingPrerequisite
	}

	if errors.Is(err, fleetcli.ErrCanceled) {
		return ExitCodeCanceled
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default is $HOME/.config/fleetdeck)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Hide the spinner and notices")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPaletteCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newServeCmd())
}
