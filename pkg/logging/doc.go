// Package logging provides the structured logging used across fleetdeck.
//
// It is a thin layer over Go's slog package that tags every entry with a
// subsystem name and keeps a single process-wide handler.
//
// # Modes
//
//   - InitForCLI: text handler on stderr, used by the palette and one-shot commands
//   - InitForFile: append-only file, used by the MCP stdio server where stdout
//     belongs to the protocol
//   - InitDiscard: silence everything (tests, --quiet)
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Runner", "Spawning %s", tool)
//	logging.Error("Schema", err, "Help lookup for %s failed", subcommand)
//
// Log entries are diagnostics for fleetdeck itself. Output of the fleet tool is
// written to the output channel (internal/output), not here.
package logging
