package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdeck/internal/fleetcli"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	list := r.List()
	require.Len(t, list, len(defaultActions))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}

	for _, group := range []string{GroupConnections, GroupAuthorizations} {
		a, ok := r.ListGroup(group)
		require.True(t, ok, group)
		assert.True(t, a.List)
	}
	_, ok := r.ListGroup(GroupTargets)
	assert.False(t, ok)
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name   string
		wantID string
		found  bool
	}{
		{name: "connections.list", wantID: "connections.list", found: true},
		{name: "connections", wantID: "connections.list", found: true},
		{name: "publish", wantID: "publications.publish", found: true},
		{name: "link:authorizations:add", wantID: "authorizations.add", found: true},
		{name: "link:unknown", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := r.Get(tt.name)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, a.ID)
		})
	}
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Action{ID: "a", Aliases: []string{"x"}, Subcommand: "link:a"}))

	assert.Error(t, r.Register(Action{ID: "a", Subcommand: "link:b"}))
	assert.Error(t, r.Register(Action{ID: "b", Aliases: []string{"x"}, Subcommand: "link:b"}))
	assert.Error(t, r.Register(Action{ID: "x", Subcommand: "link:b"}), "ID clashing with an alias")
	assert.Error(t, r.Register(Action{ID: "c"}))
}

func TestRegistry_Completions(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"connections", "connections.create", "connections.delete", "connections.info", "connections.list"}, r.Completions("conn"))
	assert.Empty(t, r.Completions("zzz"))
	assert.Contains(t, r.AllCompletions(), "authorizations")
	assert.Contains(t, r.AllCompletions(), "link:connections")
	assert.Equal(t, []string{"link:authorizations", "link:authorizations:add", "link:authorizations:destroy", "link:authorizations:info"}, r.Completions("link:auth"))
}

func TestAction_Title(t *testing.T) {
	a, _ := DefaultRegistry().Get("connections.list")
	assert.Equal(t, "Fleet Link: Connections: List", a.Title())

	assert.Equal(t, "Fleet Link: Dry Run: Set Up", Action{Group: "dry-run", Verb: "set-up"}.Title())
}

func TestAction_Request(t *testing.T) {
	install, _ := DefaultRegistry().Get("plugin.install")
	req := install.Request(Invocation{})
	assert.Equal(t, "plugins:install", req.Subcommand)
	assert.Equal(t, []string{fleetcli.PluginPackage}, req.Values)

	create, _ := DefaultRegistry().Get("targets.create")
	req = create.Request(Invocation{Values: []string{"staging", "ignored"}, App: "billing-api", Trailing: "--json"})
	assert.Equal(t, []string{"staging"}, req.Values)
	assert.Equal(t, "billing-api", req.App)
	assert.Equal(t, "--json", req.Trailing)
	assert.True(t, req.PromptTrailing)
	assert.Equal(t, "Fleet Link: Targets: Create", req.Title)
}
