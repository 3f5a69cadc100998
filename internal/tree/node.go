// Package tree turns fleet list output into display nodes.
package tree

// Kind tags a node.
type Kind int

const (
	KindRoot Kind = iota
	KindConnection
	KindAuthorization
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindConnection:
		return "connection"
	case KindAuthorization:
		return "authorization"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// DocsURL is offered by placeholder nodes when nothing could be listed.
const DocsURL = "https://docs.fleet.dev/link/getting-started"

// Activation is what happens when a node is picked: either an action run
// with pre-filled values, or a link to open.
type Activation struct {
	ActionID string   `json:"action,omitempty"`
	Values   []string `json:"values,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Node is one row of the tree. Nodes are rebuilt on every refresh.
type Node struct {
	Label       string      `json:"label"`
	Kind        Kind        `json:"-"`
	KindName    string      `json:"kind"`
	ID          string      `json:"id,omitempty"`
	Description string      `json:"description,omitempty"`
	Activate    *Activation `json:"activate,omitempty"`
	Children    []*Node     `json:"children,omitempty"`
}

func newNode(kind Kind, label string) *Node {
	return &Node{Kind: kind, KindName: kind.String(), Label: label}
}

// Placeholder returns the node shown when a group has nothing to list.
func Placeholder(message string) *Node {
	n := newNode(KindPlaceholder, message)
	n.Description = "See " + DocsURL
	n.Activate = &Activation{URL: DocsURL}
	return n
}
