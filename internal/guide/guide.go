// Package guide walks the user through a missing fleet CLI or link plugin.
package guide

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"fleetdeck/internal/fleetcli"
	"fleetdeck/internal/prompt"
	"fleetdeck/pkg/logging"
)

// Install documentation.
const (
	ToolInstallURL = "https://docs.fleet.dev/cli/install"
	DocsURL        = "https://docs.fleet.dev/link/getting-started"
)

// Outcome is what the user chose.
type Outcome int

const (
	OutcomeCanceled Outcome = iota
	OutcomeInstalled
	OutcomeInstallFailed
	OutcomeGuideShown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInstalled:
		return "installed"
	case OutcomeInstallFailed:
		return "install failed"
	case OutcomeGuideShown:
		return "guide shown"
	default:
		return "canceled"
	}
}

// Choice labels.
const (
	ChoiceInstall = "Install plugin"
	ChoiceGuide   = "Open install guide"
	ChoiceCancel  = "Cancel"
)

// Installer installs the link plugin.
type Installer interface {
	InstallPlugin(ctx context.Context) (fleetcli.Result, error)
}

const guideTemplate = `
{{- if .ToolMissing -}}
The {{ .Tool | quote }} CLI was not found on your PATH.

Install it from {{ .ToolURL }} and check that "{{ .Tool | base }} --version"
works in a new terminal, or point fleetdeck at the binary:

  fleetdeck config set cliPath /path/to/{{ .Tool | base }}
{{- else -}}
The {{ .Tool | base }} CLI is installed but the {{ .Plugin | quote }} plugin is missing.

Install it with:

  {{ .Tool | base }} plugins:install {{ .Package }}
{{- end }}

Documentation: {{ .DocsURL }}
`

var guideTmpl = template.Must(template.New("guide").Funcs(sprig.TxtFuncMap()).Parse(guideTemplate))

type guideData struct {
	Tool        string
	Plugin      string
	Package     string
	ToolMissing bool
	ToolURL     string
	DocsURL     string
}

// Text renders the install instructions for err.
func Text(err *fleetcli.MissingPrerequisiteError) string {
	var buf bytes.Buffer
	data := guideData{
		Tool:        err.Tool,
		Plugin:      err.Plugin,
		Package:     fleetcli.PluginPackage,
		ToolMissing: err.ToolMissing(),
		ToolURL:     ToolInstallURL,
		DocsURL:     DocsURL,
	}
	if execErr := guideTmpl.Execute(&buf, data); execErr != nil {
		return fmt.Sprintf("%v\nSee %s", err, DocsURL)
	}
	return buf.String()
}

// Options returns the choices offered for err. Installing the plugin is only
// offered when the tool itself is present.
func Options(err *fleetcli.MissingPrerequisiteError) []string {
	if err.ToolMissing() {
		return []string{ChoiceGuide, ChoiceCancel}
	}
	return []string{ChoiceInstall, ChoiceGuide, ChoiceCancel}
}

// Guide offers install, guide or cancel. It never retries on its own.
type Guide struct {
	prompter  prompt.Prompter
	installer Installer
	out       io.Writer
}

// New creates a guide.
func New(prompter prompt.Prompter, installer Installer, out io.Writer) *Guide {
	return &Guide{prompter: prompter, installer: installer, out: out}
}

// Handle asks the user how to proceed with err and acts on the answer.
func (g *Guide) Handle(ctx context.Context, err *fleetcli.MissingPrerequisiteError) (Outcome, error) {
	options := Options(err)
	idx, chooseErr := g.prompter.Choose(ctx, err.Error()+". What would you like to do?", options)
	if chooseErr != nil {
		if errors.Is(chooseErr, fleetcli.ErrCanceled) {
			return OutcomeCanceled, nil
		}
		return OutcomeCanceled, chooseErr
	}

	switch options[idx] {
	case ChoiceInstall:
		logging.Info("Guide", "Installing %s", fleetcli.PluginPackage)
		result, installErr := g.installer.InstallPlugin(ctx)
		if installErr != nil {
			return OutcomeInstallFailed, installErr
		}
		if !result.OK() {
			return OutcomeInstallFailed, fmt.Errorf("plugin install exited with code %d", result.ExitCode)
		}
		return OutcomeInstalled, nil
	case ChoiceGuide:
		fmt.Fprintln(g.out, Text(err))
		return OutcomeGuideShown, nil
	default:
		return OutcomeCanceled, nil
	}
}
