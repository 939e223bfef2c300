package browser

import (
	"fmt"
	"strings"
)

// refBox pairs an issued ref with its element's viewport bounding box, kept
// for screenshot annotation. Replaced wholesale on every snapshot.
type refBox struct {
	ref    string
	bounds [4]float64
}

// formatSnapshot renders the accessibility tree as an indented text outline
// and rebuilds the ref table from scratch: refs are assigned in emission
// order, starting at e1 for every snapshot. A nil tree renders the
// "[empty page]" sentinel; the page title/URL trailer accompanies every
// render.
func formatSnapshot(root *Node, info PageInfo, table *refTable) (string, []refBox) {
	table.reset()

	var b strings.Builder
	var boxes []refBox
	if root == nil {
		b.WriteString("[empty page]\n")
	} else {
		writeNode(&b, root, 0, table, &boxes)
	}
	fmt.Fprintf(&b, "\nPage title: %s\nPage URL: %s\n", info.Title, info.URL)
	return b.String(), boxes
}

// writeNode emits one outline line per node, depth-first pre-order.
func writeNode(b *strings.Builder, n *Node, depth int, table *refTable, boxes *[]refBox) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("- ")
	b.WriteString(n.Role)
	if n.Name != "" {
		fmt.Fprintf(b, " %q", n.Name)
	}
	if n.Level > 0 {
		fmt.Fprintf(b, " [level=%d]", n.Level)
	}
	if n.Value != "" {
		fmt.Fprintf(b, " [value=%q]", n.Value)
	}
	if states := stateFlags(n); len(states) > 0 {
		fmt.Fprintf(b, " [%s]", strings.Join(states, ", "))
	}
	if n.Locator != "" {
		ref := table.assign(n.Locator)
		fmt.Fprintf(b, " [ref=%s]", ref)
		*boxes = append(*boxes, refBox{ref: ref, bounds: n.Bounds})
	}
	b.WriteByte('\n')

	for i := range n.Children {
		writeNode(b, &n.Children[i], depth+1, table, boxes)
	}
}

// stateFlags returns the node's active boolean states in a fixed order.
func stateFlags(n *Node) []string {
	var states []string
	if n.Disabled {
		states = append(states, "disabled")
	}
	if n.Checked {
		states = append(states, "checked")
	}
	if n.Expanded {
		states = append(states, "expanded")
	}
	if n.Collapsed {
		states = append(states, "collapsed")
	}
	if n.Required {
		states = append(states, "required")
	}
	if n.Focused {
		states = append(states, "focused")
	}
	return states
}
