// Package actions is the catalog of fleet link operations offered in the
// palette and over MCP.
package actions

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"fleetdeck/internal/fleetcli"
)

// Group names. List actions of the connections and authorizations groups
// back the tree view.
const (
	GroupConnections    = "connections"
	GroupAuthorizations = "authorizations"
	GroupTargets        = "targets"
	GroupPublications   = "publications"
	GroupPlugin         = "plugin"
)

// Action is one palette entry.
type Action struct {
	// ID is the stable name, such as "connections.list".
	ID          string
	Aliases     []string
	Group       string
	Verb        string
	Description string

	Subcommand  string
	Positionals []fleetcli.Positional
	// Defaults pre-fill positionals the caller leaves empty.
	Defaults       []string
	PromptTrailing bool

	// List marks actions whose output is parsed into tree nodes.
	List bool
}

// Invocation carries the caller's values for one run of an action.
type Invocation struct {
	Values   []string
	App      string
	Trailing string
}

// Request converts the action and the caller's values into a runner request.
func (a Action) Request(in Invocation) fleetcli.Request {
	values := make([]string, len(a.Positionals))
	for i := range values {
		switch {
		case i < len(in.Values) && in.Values[i] != "":
			values[i] = in.Values[i]
		case i < len(a.Defaults):
			values[i] = a.Defaults[i]
		}
	}
	return fleetcli.Request{
		Subcommand:     a.Subcommand,
		Title:          a.Title(),
		Positionals:    a.Positionals,
		Values:         values,
		App:            in.App,
		Trailing:       in.Trailing,
		PromptTrailing: a.PromptTrailing,
	}
}

const titleTemplate = `Fleet Link: {{ .Group | replace "-" " " | title }}: {{ .Verb | replace "-" " " | title }}`

var titleTmpl = template.Must(template.New("title").Funcs(sprig.TxtFuncMap()).Parse(titleTemplate))

// Title renders the palette title, such as "Fleet Link: Connections: List".
func (a Action) Title() string {
	var buf bytes.Buffer
	if err := titleTmpl.Execute(&buf, a); err != nil {
		return fmt.Sprintf("Fleet Link: %s %s", a.Group, a.Verb)
	}
	return buf.String()
}
