package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/config"
	"fleetdeck/internal/output"
	"fleetdeck/internal/tree"
)

// fakeFleet is a stand-in for the fleet CLI.
const fakeFleet = `#!/bin/sh
case "$1" in
  plugins)
    echo '[{"name":"@fleet/plugin-link","version":"1.4.2"}]'
    ;;
  link:connections)
    echo '[{"id":"c-1","status":"connected","org":{"connection_name":"prod-org"}}]'
    ;;
  link:targets:create)
    if [ "$2" = "--help" ]; then
      printf 'USAGE\n  $ fleet link:targets:create NAME\n\nFLAGS\n  -a, --app=<value>  (required) app\n'
      exit 0
    fi
    echo "created $2 for $4"
    ;;
  link:publish)
    if [ "$2" = "--help" ]; then
      exit 0
    fi
    echo "publish rejected" >&2
    exit 4
    ;;
  *)
    echo "unknown command $1" >&2
    exit 1
    ;;
esac
`

func newTestServer(t *testing.T) (*Server, *config.Store) {
	t.Helper()
	dir := t.TempDir()
	tool := filepath.Join(dir, "fleet")
	require.NoError(t, os.WriteFile(tool, []byte(fakeFleet), 0755))

	store := config.NewStore(filepath.Join(dir, "config"))
	require.NoError(t, store.Set("cliPath", tool))
	require.NoError(t, store.Set("debugTracing", "false"))

	s := New(Options{
		Version:  "test",
		Store:    store,
		Registry: actions.DefaultRegistry(),
		Channel:  output.NewChannel(nil),
	})
	return s, store
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	var parts []string
	for _, c := range res.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestHandleListActions(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListActions(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var infos []actionInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &infos))
	require.NotEmpty(t, infos)

	byID := map[string]actionInfo{}
	for _, i := range infos {
		byID[i.ID] = i
	}
	assert.Equal(t, "link:authorizations:add", byID["authorizations.add"].Subcommand)
	assert.Equal(t, []string{"name"}, byID["authorizations.add"].Positionals)
	assert.Equal(t, "Fleet Link: Connections: List", byID["connections.list"].Title)
}

func TestHandleRunAction(t *testing.T) {
	tests := []struct {
		name         string
		args         map[string]interface{}
		wantError    bool
		wantContains string
	}{
		{
			name:         "runs with answers",
			args:         map[string]interface{}{"action": "targets.create", "app": "billing-api", "answers": map[string]interface{}{"name": "staging"}},
			wantContains: "created staging for billing-api",
		},
		{
			name:         "missing required app",
			args:         map[string]interface{}{"action": "targets.create", "answers": map[string]interface{}{"name": "staging"}},
			wantError:    true,
			wantContains: "app is required",
		},
		{
			name:         "unknown action",
			args:         map[string]interface{}{"action": "targets.destroy"},
			wantError:    true,
			wantContains: "Unknown action",
		},
		{
			name:         "answers must be an object",
			args:         map[string]interface{}{"action": "targets.create", "answers": "staging"},
			wantError:    true,
			wantContains: "answers must be a JSON object",
		},
		{
			name:         "non-zero exit",
			args:         map[string]interface{}{"action": "publish"},
			wantError:    true,
			wantContains: `"exitCode": 4`,
		},
		{
			name:         "action is required",
			args:         map[string]interface{}{},
			wantError:    true,
			wantContains: "action argument is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			res, err := s.handleRunAction(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, res.IsError)
			assert.Contains(t, resultText(t, res), tt.wantContains)
		})
	}
}

func TestHandleTree(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, store.Set("defaultApp", "billing-api"))

	res, err := s.handleTree(context.Background(), callRequest(map[string]interface{}{"group": "connections"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var nodes []*tree.Node
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &nodes))
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Children, 1)
	assert.Equal(t, "prod-org", nodes[0].Children[0].Label)
	assert.Equal(t, "connection", nodes[0].Children[0].KindName)

	res, err = s.handleTree(context.Background(), callRequest(map[string]interface{}{"group": "targets"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleSettings(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleSetSetting(ctx, callRequest(map[string]interface{}{"key": "defaultApp", "value": "billing-api"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.handleGetSetting(ctx, callRequest(map[string]interface{}{"key": "defaultApp"}))
	require.NoError(t, err)
	assert.Equal(t, "billing-api", resultText(t, res))

	res, err = s.handleGetSetting(ctx, callRequest(nil))
	require.NoError(t, err)
	var all map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &all))
	assert.Equal(t, "billing-api", all["defaultApp"])

	res, err = s.handleSetSetting(ctx, callRequest(map[string]interface{}{"key": "colour", "value": "blue"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown setting")
}

func TestHandleCheckPrerequisites(t *testing.T) {
	s, store := newTestServer(t)

	res, err := s.handleCheckPrerequisites(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"version": "1.4.2"`)

	require.NoError(t, store.Set("cliPath", filepath.Join(t.TempDir(), "missing-fleet")))
	res, err = s.handleCheckPrerequisites(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "was not found on your PATH")
}
