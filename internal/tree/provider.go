package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"fleetdeck/internal/actions"
	"fleetdeck/internal/fleetcli"
	"fleetdeck/pkg/logging"
)

const treeSubsystem = "Tree"

// Runner is the part of fleetcli.Runner the tree needs.
type Runner interface {
	Capture(ctx context.Context, subcommand string, extra ...string) (fleetcli.Result, error)
	Schemas() *fleetcli.SchemaCache
}

// group describes one root of the tree.
type group struct {
	id         string
	label      string
	kind       Kind
	infoAction string
	labelKeys  []string
}

var groups = []group{
	{
		id:         actions.GroupConnections,
		label:      "Connections",
		kind:       KindConnection,
		infoAction: "connections.info",
		labelKeys:  []string{"connection name", "name", "id"},
	},
	{
		id:         actions.GroupAuthorizations,
		label:      "Authorizations",
		kind:       KindAuthorization,
		infoAction: "authorizations.info",
		labelKeys:  []string{"developer name", "name", "id"},
	},
}

// Provider builds tree nodes from list invocations.
type Provider struct {
	runner   Runner
	registry *actions.Registry
}

// NewProvider creates a provider.
func NewProvider(runner Runner, registry *actions.Registry) *Provider {
	return &Provider{runner: runner, registry: registry}
}

// Roots returns the group nodes without children.
func (p *Provider) Roots() []*Node {
	roots := make([]*Node, 0, len(groups))
	for _, g := range groups {
		n := newNode(KindRoot, g.label)
		n.ID = g.id
		roots = append(roots, n)
	}
	return roots
}

// Children lists the items of a root node. It never fails: problems become
// a single placeholder node.
func (p *Provider) Children(ctx context.Context, root *Node) []*Node {
	g, ok := findGroup(root.ID)
	if !ok {
		return []*Node{Placeholder(fmt.Sprintf("Unknown group %q", root.ID))}
	}
	action, ok := p.registry.ListGroup(g.id)
	if !ok {
		return []*Node{Placeholder(fmt.Sprintf("No list action for %s", g.label))}
	}

	var extra []string
	if p.runner.Schemas().Infer(ctx, action.Subcommand).SupportsJSON {
		extra = append(extra, fleetcli.FlagJSON)
	}

	result, err := p.runner.Capture(ctx, action.Subcommand, extra...)
	if err != nil {
		var missing *fleetcli.MissingInputError
		if errors.As(err, &missing) {
			return []*Node{Placeholder(fmt.Sprintf("Set defaultApp to list %s", strings.ToLower(g.label)))}
		}
		logging.Warn(treeSubsystem, "Listing %s failed: %v", g.id, err)
		return []*Node{Placeholder(fmt.Sprintf("Could not list %s: %v", strings.ToLower(g.label), err))}
	}
	if !result.OK() {
		return []*Node{Placeholder(fmt.Sprintf("fleet %s exited with code %d", action.Subcommand, result.ExitCode))}
	}

	records := result.Records()
	if len(records) == 0 {
		return []*Node{Placeholder(fmt.Sprintf("No %s found", strings.ToLower(g.label)))}
	}

	nodes := make([]*Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, nodeFromRecord(g, rec))
	}
	return nodes
}

// Refresh rebuilds every root with its children. Groups load concurrently.
func (p *Provider) Refresh(ctx context.Context) []*Node {
	roots := p.Roots()
	eg, ctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		eg.Go(func() error {
			root.Children = p.Children(ctx, root)
			return nil
		})
	}
	_ = eg.Wait()
	return roots
}

// Group returns the root with id, children loaded.
func (p *Provider) Group(ctx context.Context, id string) (*Node, bool) {
	for _, root := range p.Roots() {
		if root.ID == id {
			root.Children = p.Children(ctx, root)
			return root, true
		}
	}
	return nil, false
}

func findGroup(id string) (group, bool) {
	for _, g := range groups {
		if g.id == id {
			return g, true
		}
	}
	return group{}, false
}

func nodeFromRecord(g group, rec fleetcli.Record) *Node {
	label := rec.Get(g.labelKeys...)
	if label == "" {
		label = "(unnamed)"
	}
	n := newNode(g.kind, label)
	n.ID = rec.Get("id", "org id")
	n.Description = describe(rec)
	n.Activate = &Activation{ActionID: g.infoAction, Values: []string{label}}
	return n
}

// describe joins status and type, such as "connected, production".
func describe(rec fleetcli.Record) string {
	var parts []string
	for _, v := range []string{rec.Get("status"), rec.Get("org type", "type")} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
