package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/config"
	"fleetdeck/internal/prompt"
)

func newTestPalette(t *testing.T) (*palette, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetErr(&errOut)

	store := config.NewStore(filepath.Join(t.TempDir(), "config"))
	s, err := newSessionWith(c, store, prompt.NewStatic(nil), &out)
	require.NoError(t, err)
	t.Cleanup(s.close)
	return &palette{s: s, out: &out}, &out
}

func TestPalette_Help(t *testing.T) {
	p, out := newTestPalette(t)

	require.NoError(t, p.execute(context.Background(), "help"))
	assert.Contains(t, out.String(), "connections.list")
	assert.Contains(t, out.String(), "Fleet Link: Targets: Create")
	assert.Contains(t, out.String(), "Also: help, tree, check, exit")
}

func TestPalette_Exit(t *testing.T) {
	p, _ := newTestPalette(t)
	assert.ErrorIs(t, p.execute(context.Background(), "exit"), errPaletteExit)
	assert.ErrorIs(t, p.execute(context.Background(), "QUIT"), errPaletteExit)
}

func TestPalette_Errors(t *testing.T) {
	p, _ := newTestPalette(t)

	err := p.execute(context.Background(), "targets.destroy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "targets.destroy"`)

	err = p.execute(context.Background(), `targets.create "unterminated`)
	require.Error(t, err)

	err = p.execute(context.Background(), "tree targets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown group")
}

func TestPaletteCompleter(t *testing.T) {
	completer := paletteCompleter(actions.DefaultRegistry())

	var names []string
	for _, c := range completer.GetChildren() {
		names = append(names, string(c.GetName()))
	}
	assert.Contains(t, names, "help ")
	assert.Contains(t, names, "connections.list ")
	assert.Contains(t, names, "link:connections ")
}
