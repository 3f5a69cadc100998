package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/guide"
	"fleetdeck/internal/prompt"
	"fleetdeck/internal/tree"
	"fleetdeck/pkg/logging"
)

const serverSubsystem = "MCPServer"

type actionInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subcommand  string   `json:"subcommand"`
	Description string   `json:"description,omitempty"`
	Positionals []string `json:"positionals,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

type runResult struct {
	InvocationID string   `json:"invocationId"`
	Args         []string `json:"args"`
	ExitCode     int      `json:"exitCode"`
	Log          string   `json:"log"`
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var infos []actionInfo
	for _, a := range s.opts.Registry.List() {
		info := actionInfo{
			ID:          a.ID,
			Title:       a.Title(),
			Subcommand:  a.Subcommand,
			Description: a.Description,
			Aliases:     a.Aliases,
		}
		for _, p := range a.Positionals {
			info.Positionals = append(info.Positionals, p.Name)
		}
		infos = append(infos, info)
	}
	return jsonResult(infos)
}

func (s *Server) handleRunAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}
	action, ok := s.opts.Registry.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown action %q", name)), nil
	}

	answers := map[string]string{}
	if raw := request.GetArguments()["answers"]; raw != nil {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("answers must be a JSON object"), nil
		}
		for k, v := range obj {
			answers[k] = fmt.Sprint(v)
		}
	}

	values := make([]string, len(action.Positionals))
	for i, p := range action.Positionals {
		values[i] = answers[p.Name]
	}

	var log strings.Builder
	runner := s.newRunner(prompt.NewStatic(answers), s.opts.Channel.Tee(&log))
	result, err := runner.Run(ctx, action.Request(actions.Invocation{
		Values:   values,
		App:      request.GetString("app", ""),
		Trailing: request.GetString("args", ""),
	}))
	if err != nil {
		var missing *fleetcli.MissingInputError
		var spawn *fleetcli.SpawnError
		switch {
		case errors.As(err, &missing):
			return mcp.NewToolResultError(fmt.Sprintf("%v; pass it in answers or set a default", err)), nil
		case errors.As(err, &spawn):
			return mcp.NewToolResultError(fmt.Sprintf("%v. Run check_prerequisites for install help", err)), nil
		default:
			logging.Error(serverSubsystem, err, "run_action %s failed", action.ID)
			return mcp.NewToolResultError(fmt.Sprintf("Action failed: %v", err)), nil
		}
	}

	payload := runResult{
		InvocationID: result.InvocationID,
		Args:         result.Args,
		ExitCode:     result.ExitCode,
		Log:          log.String(),
	}
	res, err := jsonResult(payload)
	if err == nil && !result.OK() {
		res.IsError = true
	}
	return res, err
}

func (s *Server) handleTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group := request.GetString("group", "")
	if group == "" {
		return jsonResult(s.provider.Refresh(ctx))
	}
	root, ok := s.provider.Group(ctx, group)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown group %q (valid: %s, %s)", group, actions.GroupConnections, actions.GroupAuthorizations)), nil
	}
	return jsonResult([]*tree.Node{root})
}

func (s *Server) handleGetSetting(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	if key == "" {
		entries, err := s.opts.Store.List()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		values := make(map[string]string, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		return jsonResult(values)
	}

	value, err := s.opts.Store.Get(key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(value), nil
}

func (s *Server) handleSetSetting(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required"), nil
	}
	if err := s.opts.Store.Set(key, request.GetString("value", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logging.Info(serverSubsystem, "Setting %s updated", key)
	return mcp.NewToolResultText(fmt.Sprintf("%s updated", key)), nil
}

func (s *Server) handleCheckPrerequisites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plugin, err := s.runner.CheckPrerequisites(ctx)
	if err != nil {
		var missing *fleetcli.MissingPrerequisiteError
		if errors.As(err, &missing) {
			return mcp.NewToolResultError(guide.Text(missing)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{"plugin": plugin.Name, "version": plugin.Version})
}
