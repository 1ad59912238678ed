package domain

// NodeKind describes how a step chooses its successor.
type NodeKind string

const (
	// NodeKindEdge follows a single unconditional edge.
	NodeKindEdge NodeKind = "edge"
	// NodeKindRouter evaluates a router and follows the labelled branch.
	NodeKindRouter NodeKind = "router"
	// NodeKindTerminal has no successor.
	NodeKindTerminal NodeKind = "terminal"
)

// Node is the introspection view of a graph node.
// It carries no behavior; the executable graph lives in pkg/graph.
type Node struct {
	ID          string       `json:"id" yaml:"id"`
	Kind        NodeKind     `json:"kind" yaml:"kind"`
	Owns        []string     `json:"owns,omitempty" yaml:"owns,omitempty"`
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// Transition defines a rule to move from one node to another.
type Transition struct {
	ToNodeID string `json:"to_node_id" yaml:"to"`

	// Label is the router output selecting this transition.
	// If empty, it's an unconditional edge.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Retry marks the back-edge whose traversals are counted against the retry budget.
	Retry bool `json:"retry,omitempty" yaml:"retry,omitempty"`

	// Fail is stamped into ErrorMessage when this transition is taken.
	Fail string `json:"fail,omitempty" yaml:"fail,omitempty"`
}
