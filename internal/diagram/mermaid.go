package diagram

import (
	"fmt"
	"strings"

	"github.com/dyike/hedgehog/internal/graph"
)

// Mermaid renders the topology as a stateDiagram-v2. A node with several
// successors gets a single edge into a fork pseudo-state, fan-in edges are
// drawn directly.
func Mermaid(t *graph.Topology) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("cannot draw topology: %w", err)
	}
	order, err := t.Order()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("stateDiagram-v2\n")
	for _, node := range order {
		if len(t.Successors(node)) > 1 {
			fmt.Fprintf(&b, "  state %s <<fork>>\n", forkName(node))
		}
	}
	for _, entry := range t.Entry() {
		fmt.Fprintf(&b, "  [*] --> %s\n", entry)
	}
	for _, node := range order {
		next := t.Successors(node)
		switch len(next) {
		case 0:
		case 1:
			fmt.Fprintf(&b, "  %s --> %s\n", node, next[0])
		default:
			fork := forkName(node)
			fmt.Fprintf(&b, "  %s --> %s\n", node, fork)
			for _, n := range next {
				fmt.Fprintf(&b, "  %s --> %s\n", fork, n)
			}
		}
	}
	for _, terminal := range t.Terminal() {
		fmt.Fprintf(&b, "  %s --> [*]\n", terminal)
	}
	return b.String(), nil
}

func forkName(node string) string { return node + "_fork" }
