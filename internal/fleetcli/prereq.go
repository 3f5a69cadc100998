package fleetcli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fleetdeck/pkg/logging"
)

// Plugin names used for the prerequisite check.
const (
	PluginName    = "link"
	PluginPackage = "@fleet/plugin-link"
)

// Plugin is one element of "fleet plugins --json".
type Plugin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// isLinkPlugin matches both the short name and the package name.
func isLinkPlugin(p Plugin) bool {
	name := strings.ToLower(p.Name)
	return name == PluginName || strings.HasSuffix(name, "plugin-"+PluginName)
}

// CheckPrerequisites verifies that the fleet tool is installed and has the
// link plugin. It returns the plugin on success and a
// *MissingPrerequisiteError when either is absent.
func (r *Runner) CheckPrerequisites(ctx context.Context) (Plugin, error) {
	settings, err := r.settings()
	if err != nil {
		return Plugin{}, fmt.Errorf("failed to load settings: %w", err)
	}
	tool := settings.Tool()

	if _, err := lookPath(tool); err != nil {
		logging.Warn(runnerSubsystem, "%s not found on PATH", tool)
		return Plugin{}, &MissingPrerequisiteError{Tool: tool, Err: err}
	}

	cmd := execCommandContext(ctx, tool, "plugins", "--json")
	output, err := cmd.Output()
	if err != nil {
		return Plugin{}, &MissingPrerequisiteError{Tool: tool, Plugin: PluginName, Err: err}
	}

	var plugins []Plugin
	if err := json.Unmarshal(output, &plugins); err != nil {
		return Plugin{}, &MissingPrerequisiteError{
			Tool:   tool,
			Plugin: PluginName,
			Err:    fmt.Errorf("unreadable plugin list: %w", err),
		}
	}
	for _, p := range plugins {
		if isLinkPlugin(p) {
			logging.Debug(runnerSubsystem, "Found plugin %s %s", p.Name, p.Version)
			return p, nil
		}
	}
	return Plugin{}, &MissingPrerequisiteError{Tool: tool, Plugin: PluginName}
}

// InstallPlugin runs "fleet plugins:install @fleet/plugin-link", streaming
// output to the sink. It is never retried automatically.
func (r *Runner) InstallPlugin(ctx context.Context) (Result, error) {
	settings, err := r.settings()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return r.execute(ctx, settings, "plugins:install", []string{"plugins:install", PluginPackage}, true)
}
