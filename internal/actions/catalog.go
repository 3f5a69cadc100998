package actions

import (
	"fleetdeck/internal/fleetcli"
)

func required(name, prompt, placeholder string) fleetcli.Positional {
	return fleetcli.Positional{Name: name, Prompt: prompt, Placeholder: placeholder, Required: true}
}

// defaultActions is the fleet link catalog.
var defaultActions = []Action{
	{
		ID: "connections.list", Aliases: []string{"connections"},
		Group: GroupConnections, Verb: "list", List: true,
		Description: "List connections of the app",
		Subcommand:  "link:connections",
	},
	{
		ID: "connections.info", Group: GroupConnections, Verb: "info",
		Description: "Show one connection",
		Subcommand:  "link:connections:info",
		Positionals: []fleetcli.Positional{required("connection", "Connection name", "prod-org")},
	},
	{
		ID: "connections.create", Group: GroupConnections, Verb: "create",
		Description:    "Create a connection to an org",
		Subcommand:     "link:connections:create",
		Positionals:    []fleetcli.Positional{required("connection", "Connection name", "prod-org")},
		PromptTrailing: true,
	},
	{
		ID: "connections.delete", Group: GroupConnections, Verb: "delete",
		Description: "Delete a connection",
		Subcommand:  "link:connections:destroy",
		Positionals: []fleetcli.Positional{required("connection", "Connection name", "prod-org")},
	},
	{
		ID: "authorizations.list", Aliases: []string{"authorizations"},
		Group: GroupAuthorizations, Verb: "list", List: true,
		Description: "List authorizations of the app",
		Subcommand:  "link:authorizations",
	},
	{
		ID: "authorizations.add", Group: GroupAuthorizations, Verb: "add",
		Description:    "Add an authorization using client credentials",
		Subcommand:     "link:authorizations:add",
		Positionals:    []fleetcli.Positional{required("name", "Authorization name", "ci-bot")},
		PromptTrailing: true,
	},
	{
		ID: "authorizations.info", Group: GroupAuthorizations, Verb: "info",
		Description: "Show one authorization",
		Subcommand:  "link:authorizations:info",
		Positionals: []fleetcli.Positional{required("name", "Authorization name", "ci-bot")},
	},
	{
		ID: "authorizations.delete", Group: GroupAuthorizations, Verb: "delete",
		Description: "Delete an authorization",
		Subcommand:  "link:authorizations:destroy",
		Positionals: []fleetcli.Positional{required("name", "Authorization name", "ci-bot")},
	},
	{
		ID: "targets.create", Group: GroupTargets, Verb: "create",
		Description:    "Create a deploy target on a connection",
		Subcommand:     "link:targets:create",
		Positionals:    []fleetcli.Positional{required("name", "Target name", "staging")},
		PromptTrailing: true,
	},
	{
		ID: "publications.publish", Aliases: []string{"publish"},
		Group: GroupPublications, Verb: "publish",
		Description:    "Publish the app to a connection",
		Subcommand:     "link:publish",
		PromptTrailing: true,
	},
	{
		ID: "publications.list", Group: GroupPublications, Verb: "list",
		Description: "List publications of the app",
		Subcommand:  "link:publications",
	},
	{
		ID: "plugin.install", Group: GroupPlugin, Verb: "install",
		Description: "Install the link plugin into the fleet CLI",
		Subcommand:  "plugins:install",
		Positionals: []fleetcli.Positional{required("plugin", "Plugin package", fleetcli.PluginPackage)},
		Defaults:    []string{fleetcli.PluginPackage},
	},
}

// DefaultRegistry returns a registry holding the fleet link catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range defaultActions {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}
