package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdeck/internal/config"
	"fleetdeck/internal/tree"
)

// fakeFleetScript lists one connection as JSON and traces to stderr.
const fakeFleetScript = `#!/bin/sh
case "$1" in
  link:connections)
    echo 'fleet:link:http GET https://link.example.com/connections 200' >&2
    echo '[{"id":"c-1","status":"connected","org":{"connection_name":"prod-org","type":"production"}}]'
    ;;
  link:authorizations)
    echo '[]'
    ;;
  *)
    exit 1
    ;;
esac
`

func setupTreeConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	tool := filepath.Join(dir, "fleet")
	require.NoError(t, os.WriteFile(tool, []byte(fakeFleetScript), 0755))

	configDir := filepath.Join(dir, "config")
	store := config.NewStore(configDir)
	require.NoError(t, store.Set("cliPath", tool))
	require.NoError(t, store.Set("defaultApp", "billing-api"))

	originalPath, originalQuiet := rootConfigPath, rootQuiet
	t.Cleanup(func() { rootConfigPath, rootQuiet = originalPath, originalQuiet })
	rootConfigPath = configDir
	rootQuiet = true
}

func TestTreeCommand_JSONStdoutIsParseable(t *testing.T) {
	setupTreeConfig(t)

	c := newTreeCmd()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetArgs([]string{"--json"})
	require.NoError(t, c.Execute())

	var roots []*tree.Node
	require.NoError(t, json.Unmarshal(out.Bytes(), &roots), "stdout: %s", out.String())
	require.Len(t, roots, 2)

	byID := map[string]*tree.Node{}
	for _, r := range roots {
		byID[r.ID] = r
	}
	require.Len(t, byID["connections"].Children, 1)
	assert.Equal(t, "prod-org", byID["connections"].Children[0].Label)
	assert.Equal(t, "connected, production", byID["connections"].Children[0].Description)
	require.Len(t, byID["authorizations"].Children, 1)
	assert.Equal(t, "placeholder", byID["authorizations"].Children[0].KindName)

	assert.Contains(t, errOut.String(), "exit 0")
}

func TestTreeCommand_SingleGroupRendersText(t *testing.T) {
	setupTreeConfig(t)

	c := newTreeCmd()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetArgs([]string{"connections"})
	require.NoError(t, c.Execute())

	assert.Contains(t, out.String(), "Connections")
	assert.Contains(t, out.String(), "prod-org")
	assert.NotContains(t, out.String(), "fleet:link:http")
}

func TestTreeCommand_UnknownGroup(t *testing.T) {
	setupTreeConfig(t)

	c := newTreeCmd()
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{"targets"})
	err := c.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown group")
}
