package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/config"
	"fleetdeck/internal/mcpserver"
	"fleetdeck/internal/output"
	"fleetdeck/pkg/logging"
)

const serveSubsystem = "Serve"

// Default file names under the configuration directory for serve mode.
const (
	serveLogName    = "fleetdeck.log"
	serveOutputName = "output.log"
)

// newServeCmd creates the command that serves the actions over MCP on stdio.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve fleet link actions to an editor over MCP (stdio)",
		Long: `Starts an MCP server on stdin/stdout. Editors call its tools to list
and run fleet link actions, read the connection tree and change settings.

stdout belongs to the protocol, so diagnostics go to fleetdeck.log and
fleet output to output.log (or the logFile setting) in the configuration
directory. Edits to config.yaml are picked up while the server runs.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	settings, err := store.Settings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := logging.InitForFile(logLevel(settings), filepath.Join(store.Path(), serveLogName)); err != nil {
		return err
	}
	defer logging.Close()

	channel := output.NewChannel(nil)
	logFile := settings.LogFile
	if logFile == "" {
		logFile = filepath.Join(store.Path(), serveOutputName)
	}
	if err := channel.OpenLogFile(logFile); err != nil {
		return err
	}
	defer channel.Close()

	watcher := config.NewWatcher(store, func(s config.Settings) {
		logging.Info(serveSubsystem, "Settings reloaded (defaultApp=%q, schemaMatch=%s)", s.DefaultApp, s.SchemaMatch)
		channel.Printf("settings reloaded from %s", store.File())
	})
	if err := watcher.Start(); err != nil {
		logging.Warn(serveSubsystem, "Not watching %s: %v", store.File(), err)
	} else {
		defer watcher.Stop()
	}

	server := mcpserver.New(mcpserver.Options{
		Version:  rootCmd.Version,
		Store:    store,
		Registry: actions.DefaultRegistry(),
		Channel:  channel,
	})

	logging.Info(serveSubsystem, "Serving MCP on stdio, session %s", channel.Session())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return server.Serve(ctx)
}
