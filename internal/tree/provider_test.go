package tree

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/fleetcli"
)

type capture struct {
	result fleetcli.Result
	err    error
}

type fakeRunner struct {
	mu      sync.Mutex
	results map[string]capture
	calls   map[string][]string
	schemas *fleetcli.SchemaCache
}

func newFakeRunner(results map[string]capture) *fakeRunner {
	return &fakeRunner{
		results: results,
		calls:   map[string][]string{},
		schemas: fleetcli.NewSchemaCache(func(ctx context.Context, sub string) (string, error) {
			return "", errors.New("no help in tests")
		}, nil),
	}
}

func (f *fakeRunner) Capture(ctx context.Context, subcommand string, extra ...string) (fleetcli.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[subcommand] = extra
	c, ok := f.results[subcommand]
	if !ok {
		return fleetcli.Result{}, errors.New("unexpected subcommand")
	}
	return c.result, c.err
}

func (f *fakeRunner) Schemas() *fleetcli.SchemaCache {
	return f.schemas
}

const connectionsJSON = `[
  {"id": "c-1", "status": "connected", "org": {"connection_name": "prod-org", "type": "production"}},
  {"id": "c-2", "status": "failed", "org": {"connection_name": "dev-org", "type": "sandbox"}}
]`

func TestProvider_Refresh(t *testing.T) {
	runner := newFakeRunner(map[string]capture{
		"link:connections": {result: fleetcli.Result{Stdout: connectionsJSON}},
		"link:authorizations": {result: fleetcli.Result{
			Stdout: "Developer Name  Status\n--------------  ----------\nci-bot          authorized\n",
		}},
	})
	provider := NewProvider(runner, actions.DefaultRegistry())

	roots := provider.Refresh(context.Background())
	require.Len(t, roots, 2)

	conns := roots[0]
	assert.Equal(t, "Connections", conns.Label)
	assert.Equal(t, KindRoot, conns.Kind)
	require.Len(t, conns.Children, 2)
	assert.Equal(t, "prod-org", conns.Children[0].Label)
	assert.Equal(t, KindConnection, conns.Children[0].Kind)
	assert.Equal(t, "c-1", conns.Children[0].ID)
	assert.Equal(t, "connected, production", conns.Children[0].Description)
	assert.Equal(t, &Activation{ActionID: "connections.info", Values: []string{"prod-org"}}, conns.Children[0].Activate)

	auths := roots[1]
	require.Len(t, auths.Children, 1)
	assert.Equal(t, "ci-bot", auths.Children[0].Label)
	assert.Equal(t, KindAuthorization, auths.Children[0].Kind)
	assert.Equal(t, "authorized", auths.Children[0].Description)

	assert.Equal(t, []string{"--json"}, runner.calls["link:connections"], "list subcommands support --json")
}

func TestProvider_Placeholders(t *testing.T) {
	tests := []struct {
		name      string
		capture   capture
		wantLabel string
	}{
		{
			name:      "empty array",
			capture:   capture{result: fleetcli.Result{Stdout: "[]"}},
			wantLabel: "No connections found",
		},
		{
			name:      "missing default app",
			capture:   capture{err: &fleetcli.MissingInputError{Field: "app"}},
			wantLabel: "Set defaultApp to list connections",
		},
		{
			name:      "tool missing",
			capture:   capture{err: &fleetcli.SpawnError{Tool: "fleet", Err: errors.New("not found")}},
			wantLabel: "Could not list connections: failed to start fleet: not found",
		},
		{
			name:      "non-zero exit",
			capture:   capture{result: fleetcli.Result{ExitCode: 2, Stderr: "Error: app not found"}},
			wantLabel: "fleet link:connections exited with code 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner(map[string]capture{"link:connections": tt.capture})
			provider := NewProvider(runner, actions.DefaultRegistry())

			root, ok := provider.Group(context.Background(), actions.GroupConnections)
			require.True(t, ok)
			require.Len(t, root.Children, 1)

			node := root.Children[0]
			assert.Equal(t, KindPlaceholder, node.Kind)
			assert.Equal(t, tt.wantLabel, node.Label)
			assert.Equal(t, DocsURL, node.Activate.URL)
		})
	}
}

func TestProvider_StderrDoesNotBreakParsing(t *testing.T) {
	tests := []struct {
		name   string
		result fleetcli.Result
	}{
		{
			name: "JSON with update warning",
			result: fleetcli.Result{
				Stdout: `[{"id": "c-1", "status": "connected", "org": {"connection_name": "prod-org"}}]`,
				Stderr: " ›   Warning: fleet update available from 8.1.0 to 8.2.0.\n",
			},
		},
		{
			name: "table with trace lines",
			result: fleetcli.Result{
				Stdout: "Connection Name  Status\n---------------  ---------\nprod-org         connected\n",
				Stderr: "fleet:link:http GET https://link.example.com/connections 200\nWarning: slow response\n",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner(map[string]capture{"link:connections": {result: tt.result}})
			provider := NewProvider(runner, actions.DefaultRegistry())

			root, ok := provider.Group(context.Background(), actions.GroupConnections)
			require.True(t, ok)
			require.Len(t, root.Children, 1)
			assert.Equal(t, KindConnection, root.Children[0].Kind)
			assert.Equal(t, "prod-org", root.Children[0].Label)
		})
	}
}

func TestProvider_UnknownGroup(t *testing.T) {
	provider := NewProvider(newFakeRunner(nil), actions.DefaultRegistry())
	_, ok := provider.Group(context.Background(), "targets")
	assert.False(t, ok)

	nodes := provider.Children(context.Background(), &Node{ID: "targets"})
	require.Len(t, nodes, 1)
	assert.Equal(t, KindPlaceholder, nodes[0].Kind)
}

func TestRender(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	root := newNode(KindRoot, "Connections")
	child := newNode(KindConnection, "prod-org")
	child.Description = "connected"
	long := Placeholder("Error: request to https://link.example.com/v1/connections failed\nstatus 503")
	root.Children = []*Node{child, Placeholder("No more"), long}

	var buf bytes.Buffer
	Render(&buf, []*Node{root})

	out := buf.String()
	assert.Contains(t, out, "Connections")
	assert.Contains(t, out, "prod-org  connected")
	assert.Contains(t, out, "No more (See "+DocsURL+")")
	assert.Contains(t, out, "Error: request to https://link.example.com/v1/connections...")
	assert.NotContains(t, out, "status 503")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "placeholder", KindPlaceholder.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
