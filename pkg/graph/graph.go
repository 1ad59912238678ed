package graph

import (
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// End is the implicit terminal node every flow ends in.
const End = "__end__"

// Router picks an outgoing label from the record produced by the step it follows.
// It receives a copy and must be pure.
type Router func(record domain.Record) string

type node struct {
	id       string
	step     ports.Step
	edge     string
	router   Router
	branches map[string]domain.Transition
	labels   []string
	terminal bool
}

func (n *node) kind() domain.NodeKind {
	switch {
	case n.router != nil:
		return domain.NodeKindRouter
	case n.terminal:
		return domain.NodeKindTerminal
	default:
		return domain.NodeKindEdge
	}
}

func (n *node) transitions() []domain.Transition {
	switch n.kind() {
	case domain.NodeKindRouter:
		out := make([]domain.Transition, 0, len(n.labels))
		for _, label := range n.labels {
			out = append(out, n.branches[label])
		}
		return out
	case domain.NodeKindTerminal:
		return []domain.Transition{{ToNodeID: End}}
	default:
		return []domain.Transition{{ToNodeID: n.edge}}
	}
}

// Graph is a validated, immutable pipeline definition.
// It is safe for concurrent use by many runs.
type Graph struct {
	entry string
	order []string
	nodes map[string]*node
}

// Entry returns the ID of the first step.
func (g *Graph) Entry() string {
	return g.entry
}

// Has reports whether id names a step of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Step returns the step bound to id.
func (g *Graph) Step(id string) (ports.Step, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n.step, true
}

// Next resolves the transition leaving id for the given record.
func (g *Graph) Next(id string, record *domain.Record) (domain.Transition, error) {
	n, ok := g.nodes[id]
	if !ok {
		return domain.Transition{}, domain.ErrUnknownStep
	}
	switch n.kind() {
	case domain.NodeKindTerminal:
		return domain.Transition{ToNodeID: End}, nil
	case domain.NodeKindEdge:
		return domain.Transition{ToNodeID: n.edge}, nil
	}

	label := n.router(*record.Clone())
	t, ok := n.branches[label]
	if !ok {
		return domain.Transition{}, &domain.RouteError{Step: id, Label: label}
	}
	return t, nil
}

// Nodes returns the introspection view of the graph in declaration order.
func (g *Graph) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(g.order))
	for _, id := range g.order {
		n := g.nodes[id]
		out = append(out, domain.Node{
			ID:          id,
			Kind:        n.kind(),
			Owns:        append([]string(nil), n.step.Owns()...),
			Transitions: n.transitions(),
		})
	}
	return out
}

// Steps returns the step names in declaration order.
func (g *Graph) Steps() []string {
	return append([]string(nil), g.order...)
}
