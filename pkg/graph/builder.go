package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Builder manages the graph construction.
type Builder struct {
	entry string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder.
// The first node added becomes the entry point unless Entry is called.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Entry sets the node where every run starts.
func (b *Builder) Entry(id string) *Builder {
	b.entry = id
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		n: &node{
			id:       id,
			branches: make(map[string]domain.Transition),
		},
		retries: make(map[string]bool),
		fails:   make(map[string]string),
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	if b.entry == "" {
		b.entry = id
	}
	return nb
}

// Build validates the wiring and compiles it into an immutable Graph.
func (b *Builder) Build() (*Graph, error) {
	if len(b.nodes) == 0 {
		return nil, errors.New("graph has no nodes")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("entry node '%s' is not defined", b.entry)
	}

	g := &Graph{
		entry: b.entry,
		order: append([]string(nil), b.order...),
		nodes: make(map[string]*node, len(b.nodes)),
	}

	for _, id := range b.order {
		nb := b.nodes[id]
		n, err := nb.compile()
		if err != nil {
			return nil, fmt.Errorf("node '%s': %w", id, err)
		}
		g.nodes[id] = n
	}

	for _, id := range g.order {
		for _, t := range g.nodes[id].transitions() {
			if t.ToNodeID == End {
				continue
			}
			if _, ok := g.nodes[t.ToNodeID]; !ok {
				return nil, fmt.Errorf("node '%s': transition to undefined node '%s'", id, t.ToNodeID)
			}
		}
	}

	return g, nil
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	n       *node
	retries map[string]bool
	fails   map[string]string
	err     error
}

// Step attaches the step executed when the run enters this node.
func (nb *NodeBuilder) Step(s ports.Step) *NodeBuilder {
	nb.n.step = s
	return nb
}

// Go adds an unconditional transition to the target node.
func (nb *NodeBuilder) Go(target string) *NodeBuilder {
	if nb.n.edge != "" {
		nb.fail(fmt.Errorf("duplicate edge to '%s'", target))
	}
	nb.n.edge = target
	return nb
}

// Route sets the router that picks the outgoing branch.
func (nb *NodeBuilder) Route(r Router) *NodeBuilder {
	nb.n.router = r
	return nb
}

// Branch maps a router label to the target node.
func (nb *NodeBuilder) Branch(label string, target string) *NodeBuilder {
	if _, dup := nb.n.branches[label]; dup {
		nb.fail(fmt.Errorf("duplicate branch for label '%s'", label))
	}
	nb.n.branches[label] = domain.Transition{Label: label, ToNodeID: target}
	nb.n.labels = append(nb.n.labels, label)
	return nb
}

// Retry marks the branch for label as the retry edge.
// The executor counts every traversal of it in Record.RetryCount.
func (nb *NodeBuilder) Retry(label string) *NodeBuilder {
	nb.retries[label] = true
	return nb
}

// Fail maps a router label to run termination with message stamped into ErrorMessage.
func (nb *NodeBuilder) Fail(label string, message string) *NodeBuilder {
	nb.fails[label] = message
	return nb.Branch(label, End)
}

// Terminal marks the node as the end of the flow.
func (nb *NodeBuilder) Terminal() *NodeBuilder {
	nb.n.terminal = true
	return nb
}

func (nb *NodeBuilder) fail(err error) {
	if nb.err == nil {
		nb.err = err
	}
}

func (nb *NodeBuilder) compile() (*node, error) {
	if nb.err != nil {
		return nil, nb.err
	}
	n := nb.n
	if n.step == nil {
		return nil, errors.New("no step attached")
	}
	if n.step.Name() != n.id {
		return nil, fmt.Errorf("step is named '%s'", n.step.Name())
	}

	rules := 0
	if n.edge != "" {
		rules++
	}
	if n.router != nil {
		rules++
		if len(n.branches) == 0 {
			return nil, errors.New("router has no branches")
		}
	} else if len(n.branches) > 0 {
		return nil, errors.New("branches declared without a router")
	}
	if n.terminal {
		rules++
	}
	switch {
	case rules == 0:
		return nil, errors.New("no outgoing edge, router, or terminal declaration")
	case rules > 1:
		return nil, errors.New("edge, router and terminal are mutually exclusive")
	}

	for label := range nb.retries {
		t, ok := n.branches[label]
		if !ok {
			return nil, fmt.Errorf("retry label '%s' has no branch", label)
		}
		if t.ToNodeID == End {
			return nil, fmt.Errorf("retry label '%s' cannot end the run", label)
		}
		t.Retry = true
		n.branches[label] = t
	}
	for label, msg := range nb.fails {
		t := n.branches[label]
		t.Fail = msg
		n.branches[label] = t
	}
	return n, nil
}
