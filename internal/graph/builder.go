package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/models"
)

type runnable = compose.Runnable[map[string]any, *models.InvestmentDecision]

type stateKey struct{}

func withRunState(ctx context.Context, s *models.RunState) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// genState hands the graph the RunState prepared by Engine.Run, so the caller
// keeps a reference to it after Invoke returns.
func genState(ctx context.Context) *models.RunState {
	if s, ok := ctx.Value(stateKey{}).(*models.RunState); ok {
		return s
	}
	return models.NewRunState("", nil)
}

// nodeKey is the eino node key of a topology stage. eino reserves "start"
// and "end", so stage names are never used as keys directly; the stage name
// stays the node name reported to callbacks.
func nodeKey(stage string) string { return "stage_" + stage }

// buildWorkflow compiles the topology into an eino graph. Every topology node
// becomes a lambda node; fan-in nodes wait for all predecessors.
func buildWorkflow(ctx context.Context, t *Topology, st *stages) (runnable, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}

	g := compose.NewGraph[map[string]any, *models.InvestmentDecision](
		compose.WithGenLocalState(genState),
	)

	for _, node := range t.Nodes {
		var lambda *compose.Lambda
		switch node {
		case consts.Start:
			lambda = compose.InvokableLambda(guard(node, st.start))
		case consts.APICallOne:
			lambda = compose.InvokableLambda(guard(node, st.fetch(node, st.sources.Equities, keyAPIOne)))
		case consts.APICallTwo:
			lambda = compose.InvokableLambda(guard(node, st.fetch(node, st.sources.Macro, keyAPITwo)))
		case consts.Aggregation:
			lambda = compose.InvokableLambda(guard(node, st.aggregate))
		case consts.PortfolioManagerDecision:
			lambda = compose.InvokableLambda(guard(node, st.decide))
		default:
			if _, ok := consts.JoinKeys[node]; !ok {
				return nil, fmt.Errorf("no stage implements node %q", node)
			}
			lambda = compose.InvokableLambda(guard(node, st.analyze(node)))
		}
		if err := g.AddLambdaNode(nodeKey(node), lambda, compose.WithNodeName(node)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", node, err)
		}
	}

	for _, entry := range t.Entry() {
		if err := g.AddEdge(compose.START, nodeKey(entry)); err != nil {
			return nil, err
		}
	}
	for _, e := range t.Edges {
		if err := g.AddEdge(nodeKey(e.From), nodeKey(e.To)); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	for _, terminal := range t.Terminal() {
		if err := g.AddEdge(nodeKey(terminal), compose.END); err != nil {
			return nil, err
		}
	}

	return g.Compile(ctx,
		compose.WithGraphName("Hedgehog-InvestmentWorkflow"),
		compose.WithNodeTriggerMode(compose.AllPredecessor),
	)
}
