package tree

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/text"

	fdstrings "fleetdeck/pkg/strings"
)

// Render writes roots as an indented tree.
func Render(w io.Writer, roots []*Node) {
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	for _, root := range roots {
		appendNode(l, root)
	}
	fmt.Fprintln(w, l.Render())
}

func appendNode(l list.Writer, n *Node) {
	l.AppendItem(itemText(n))
	if len(n.Children) == 0 {
		return
	}
	l.Indent()
	for _, c := range n.Children {
		appendNode(l, c)
	}
	l.UnIndent()
}

func itemText(n *Node) string {
	switch {
	case n.Kind == KindRoot:
		return text.Bold.Sprint(n.Label)
	case n.Kind == KindPlaceholder:
		return text.Faint.Sprint(fdstrings.Truncate(n.Label, fdstrings.DescriptionMaxLen) + " (" + fdstrings.Truncate(n.Description, fdstrings.DescriptionMaxLen) + ")")
	case n.Description != "":
		return n.Label + "  " + text.FgHiBlack.Sprint(fdstrings.Truncate(n.Description, fdstrings.DescriptionMaxLen))
	default:
		return n.Label
	}
}
