package graph

import (
	"fmt"
	"sort"

	"github.com/dyike/hedgehog/consts"
)

type Edge struct {
	From string
	To   string
}

// Topology is an explicit node and edge list. It is the single source for
// both the compiled workflow and the exported diagram.
type Topology struct {
	Nodes []string
	Edges []Edge
}

// InvestmentTopology is the nine-stage investment workflow:
// start fans out to two fetches, both join at aggregation, aggregation fans
// out to four analyses, and all four join at the portfolio decision.
func InvestmentTopology() *Topology {
	t := &Topology{
		Nodes: []string{
			consts.Start,
			consts.APICallOne,
			consts.APICallTwo,
			consts.Aggregation,
			consts.AgentAnalysisOne,
			consts.AgentAnalysisTwo,
			consts.AgentAnalysisThree,
			consts.AgentAnalysisFour,
			consts.PortfolioManagerDecision,
		},
		Edges: []Edge{
			{consts.Start, consts.APICallOne},
			{consts.Start, consts.APICallTwo},
			{consts.APICallOne, consts.Aggregation},
			{consts.APICallTwo, consts.Aggregation},
		},
	}
	for _, stage := range consts.AnalysisStages {
		t.Edges = append(t.Edges, Edge{consts.Aggregation, stage})
	}
	for _, stage := range consts.AnalysisStages {
		t.Edges = append(t.Edges, Edge{stage, consts.PortfolioManagerDecision})
	}
	return t
}

func (t *Topology) Successors(node string) []string {
	var out []string
	for _, e := range t.Edges {
		if e.From == node {
			out = append(out, e.To)
		}
	}
	return out
}

func (t *Topology) Predecessors(node string) []string {
	var out []string
	for _, e := range t.Edges {
		if e.To == node {
			out = append(out, e.From)
		}
	}
	return out
}

// Entry returns the nodes without predecessors.
func (t *Topology) Entry() []string {
	var out []string
	for _, n := range t.Nodes {
		if len(t.Predecessors(n)) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Terminal returns the nodes without successors.
func (t *Topology) Terminal() []string {
	var out []string
	for _, n := range t.Nodes {
		if len(t.Successors(n)) == 0 {
			out = append(out, n)
		}
	}
	return out
}

func (t *Topology) Has(node string) bool {
	for _, n := range t.Nodes {
		if n == node {
			return true
		}
	}
	return false
}

// Order returns the nodes in a topological order, or an error if the edges
// contain a cycle. Ties keep declaration order.
func (t *Topology) Order() ([]string, error) {
	indegree := make(map[string]int, len(t.Nodes))
	for _, n := range t.Nodes {
		indegree[n] = 0
	}
	for _, e := range t.Edges {
		indegree[e.To]++
	}
	rank := make(map[string]int, len(t.Nodes))
	for i, n := range t.Nodes {
		rank[n] = i
	}

	var ready, order []string
	for _, n := range t.Nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, next := range t.Successors(n) {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
				sort.SliceStable(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })
			}
		}
	}
	if len(order) != len(t.Nodes) {
		return nil, fmt.Errorf("topology contains a cycle")
	}
	return order, nil
}

// Validate checks that the topology is a connected DAG with exactly one entry
// and one terminal node.
func (t *Topology) Validate() error {
	seen := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if seen[n] {
			return fmt.Errorf("duplicate node %q", n)
		}
		seen[n] = true
	}
	edges := make(map[Edge]bool, len(t.Edges))
	for _, e := range t.Edges {
		if !seen[e.From] || !seen[e.To] {
			return fmt.Errorf("edge %s -> %s references an unknown node", e.From, e.To)
		}
		if e.From == e.To {
			return fmt.Errorf("self loop on %q", e.From)
		}
		if edges[e] {
			return fmt.Errorf("duplicate edge %s -> %s", e.From, e.To)
		}
		edges[e] = true
	}
	if entry := t.Entry(); len(entry) != 1 {
		return fmt.Errorf("topology needs exactly one entry node, found %v", entry)
	}
	if terminal := t.Terminal(); len(terminal) != 1 {
		return fmt.Errorf("topology needs exactly one terminal node, found %v", terminal)
	}
	if _, err := t.Order(); err != nil {
		return err
	}

	reached := map[string]bool{}
	queue := t.Entry()
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if reached[n] {
			continue
		}
		reached[n] = true
		queue = append(queue, t.Successors(n)...)
	}
	for _, n := range t.Nodes {
		if !reached[n] {
			return fmt.Errorf("node %q is unreachable", n)
		}
	}
	return nil
}
