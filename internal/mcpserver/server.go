// Package mcpserver exposes fleetdeck over the Model Context Protocol so an
// editor can list and run fleet link actions and read the tree.
//
// Tool calls never prompt. Values a terminal user would be asked for arrive
// as tool arguments and are answered through prompt.Static; a required value
// that is missing fails the call before the fleet tool is started.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/config"
	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/output"
	"fleetdeck/internal/tree"
)

// Options are the process-scoped objects the server shares with every call.
type Options struct {
	Name     string
	Version  string
	Store    *config.Store
	Registry *actions.Registry
	Schemas  *fleetcli.SchemaCache
	Channel  *output.Channel
}

// Server is the MCP front end.
type Server struct {
	opts      Options
	mcpServer *server.MCPServer
	runner    *fleetcli.Runner
	provider  *tree.Provider
}

// New creates a server and registers its tools.
func New(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "fleetdeck"
	}
	if opts.Channel == nil {
		opts.Channel = output.NewChannel(nil)
	}

	s := &Server{
		opts: opts,
		mcpServer: server.NewMCPServer(
			opts.Name,
			opts.Version,
			server.WithToolCapabilities(false),
		),
	}
	s.runner = s.newRunner(nil, opts.Channel)
	if opts.Schemas == nil {
		s.opts.Schemas = s.runner.Schemas()
	}
	s.provider = tree.NewProvider(s.runner, opts.Registry)

	s.registerTools()
	return s
}

// newRunner builds a runner for one call. All runners share the schema cache.
func (s *Server) newRunner(prompter fleetcli.Prompter, sink fleetcli.Sink) *fleetcli.Runner {
	return fleetcli.NewRunner(fleetcli.RunnerOptions{
		Settings: s.opts.Store.Settings,
		Schemas:  s.opts.Schemas,
		Prompter: prompter,
		Sink:     sink,
	})
}

// Serve handles MCP over stdin/stdout until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the fleet link actions that can be run"),
	), s.handleListActions)

	s.mcpServer.AddTool(mcp.NewTool("run_action",
		mcp.WithDescription("Run a fleet link action and return its log"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action ID, alias or fleet subcommand, e.g. connections.list"),
		),
		mcp.WithString("app",
			mcp.Description("App to run against; defaults to the defaultApp setting"),
		),
		mcp.WithString("args",
			mcp.Description("Additional command line arguments, shell quoted"),
		),
		mcp.WithObject("answers",
			mcp.Description("Values for the action's positional arguments, keyed by name"),
		),
	), s.handleRunAction)

	s.mcpServer.AddTool(mcp.NewTool("tree",
		mcp.WithDescription("List connections and authorizations as tree nodes"),
		mcp.WithString("group",
			mcp.Description("Only this group: connections or authorizations"),
		),
	), s.handleTree)

	s.mcpServer.AddTool(mcp.NewTool("get_setting",
		mcp.WithDescription("Read a fleetdeck setting; omit key to list all"),
		mcp.WithString("key",
			mcp.Description("Setting name, e.g. defaultApp"),
		),
	), s.handleGetSetting)

	s.mcpServer.AddTool(mcp.NewTool("set_setting",
		mcp.WithDescription("Change a fleetdeck setting; an empty value clears it"),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Setting name, e.g. defaultApp"),
		),
		mcp.WithString("value",
			mcp.Description("New value"),
		),
	), s.handleSetSetting)

	s.mcpServer.AddTool(mcp.NewTool("check_prerequisites",
		mcp.WithDescription("Check that the fleet CLI and its link plugin are installed"),
	), s.handleCheckPrerequisites)
}
