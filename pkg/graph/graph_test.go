package graph_test

import (
	"context"
	"testing"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStep struct {
	name string
	owns []string
}

func (s stubStep) Name() string   { return s.name }
func (s stubStep) Owns() []string { return s.owns }
func (s stubStep) Execute(context.Context, domain.Record) domain.Update {
	return domain.Update{}
}

func step(name string) stubStep {
	return stubStep{name: name, owns: []string{name}}
}

func loop(t *testing.T, maxRetries int) *graph.Graph {
	t.Helper()
	b := graph.New()
	b.Add("edit").Step(step("edit")).Go("validate")
	b.Add("validate").Step(step("validate")).
		Route(graph.ValidationRouter(maxRetries)).
		Branch(domain.LabelApproved, "finalize").
		Branch(domain.LabelRejected, "edit").Retry(domain.LabelRejected).
		Branch(domain.LabelError, graph.End).
		Fail(domain.LabelExhausted, domain.MaxRetriesExceeded)
	b.Add("finalize").Step(step("finalize")).Terminal()

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func boolPtr(b bool) *bool { return &b }

func TestGraph_Next(t *testing.T) {
	g := loop(t, 2)

	tests := []struct {
		name   string
		from   string
		record domain.Record
		want   domain.Transition
	}{
		{
			name: "Edge",
			from: "edit",
			want: domain.Transition{ToNodeID: "validate"},
		},
		{
			name:   "Approved",
			from:   "validate",
			record: domain.Record{ValidationApproved: boolPtr(true)},
			want:   domain.Transition{Label: domain.LabelApproved, ToNodeID: "finalize"},
		},
		{
			name:   "Rejected takes the retry edge",
			from:   "validate",
			record: domain.Record{ValidationApproved: boolPtr(false), RetryCount: 1},
			want:   domain.Transition{Label: domain.LabelRejected, ToNodeID: "edit", Retry: true},
		},
		{
			name:   "Exhausted fails the run",
			from:   "validate",
			record: domain.Record{ValidationApproved: boolPtr(false), RetryCount: 2},
			want:   domain.Transition{Label: domain.LabelExhausted, ToNodeID: graph.End, Fail: domain.MaxRetriesExceeded},
		},
		{
			name:   "Error wins over approval",
			from:   "validate",
			record: domain.Record{ValidationApproved: boolPtr(true), ErrorMessage: "boom"},
			want:   domain.Transition{Label: domain.LabelError, ToNodeID: graph.End},
		},
		{
			name: "Terminal",
			from: "finalize",
			want: domain.Transition{ToNodeID: graph.End},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.record
			got, err := g.Next(tt.from, &rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.Next("missing", &domain.Record{})
	assert.ErrorIs(t, err, domain.ErrUnknownStep)
}

func TestValidationRouter_IsPure(t *testing.T) {
	router := graph.ValidationRouter(3)
	rec := domain.Record{ValidationApproved: boolPtr(false), RetryCount: 1}

	first := router(rec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, router(rec))
	}
	assert.Equal(t, domain.LabelRejected, first)
	assert.Equal(t, domain.LabelRejected, router(domain.Record{}), "nil approval counts as rejection")
}

func TestGraph_UnmappedLabel(t *testing.T) {
	b := graph.New()
	b.Add("validate").Step(step("validate")).
		Route(func(domain.Record) string { return "maybe" }).
		Branch("yes", graph.End)
	g, err := b.Build()
	require.NoError(t, err)

	_, err = g.Next("validate", &domain.Record{})
	var routeErr *domain.RouteError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "maybe", routeErr.Label)
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		build   func(b *graph.Builder)
		wantErr string
	}{
		{
			name:    "Empty",
			build:   func(*graph.Builder) {},
			wantErr: "no nodes",
		},
		{
			name: "Missing entry",
			build: func(b *graph.Builder) {
				b.Entry("nowhere")
				b.Add("a").Step(step("a")).Terminal()
			},
			wantErr: "entry node 'nowhere'",
		},
		{
			name: "Undefined target",
			build: func(b *graph.Builder) {
				b.Add("a").Step(step("a")).Go("b")
			},
			wantErr: "undefined node 'b'",
		},
		{
			name: "No outgoing rule",
			build: func(b *graph.Builder) {
				b.Add("a").Step(step("a"))
			},
			wantErr: "no outgoing edge",
		},
		{
			name: "Router without branches",
			build: func(b *graph.Builder) {
				b.Add("a").Step(step("a")).Route(graph.ValidationRouter(1))
			},
			wantErr: "router has no branches",
		},
		{
			name: "Step name mismatch",
			build: func(b *graph.Builder) {
				b.Add("a").Step(step("b")).Terminal()
			},
			wantErr: "step is named 'b'",
		},
		{
			name: "Missing step",
			build: func(b *graph.Builder) {
				b.Add("a").Terminal()
			},
			wantErr: "no step attached",
		},
		{
			name: "Retry without branch",
			build: func(b *graph.Builder) {
				b.Add("a").Step(step("a")).
					Route(graph.ValidationRouter(1)).
					Branch("x", graph.End).
					Retry("y")
			},
			wantErr: "retry label 'y'",
		},
		{
			name: "Edge and terminal",
			build: func(b *graph.Builder) {
				b.Add("a").Step(step("a")).Go("a").Terminal()
			},
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := graph.New()
			tt.build(b)
			_, err := b.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGraph_Nodes(t *testing.T) {
	g := loop(t, 5)

	assert.Equal(t, "edit", g.Entry())
	assert.True(t, g.Has("validate"))
	assert.False(t, g.Has(graph.End))
	assert.Equal(t, []string{"edit", "validate", "finalize"}, g.Steps())

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, domain.NodeKindEdge, nodes[0].Kind)
	assert.Equal(t, domain.NodeKindRouter, nodes[1].Kind)
	assert.Equal(t, domain.NodeKindTerminal, nodes[2].Kind)
	assert.Equal(t, []string{"validate"}, nodes[1].Owns)

	require.Len(t, nodes[1].Transitions, 4)
	assert.True(t, nodes[1].Transitions[1].Retry)
	assert.Equal(t, domain.MaxRetriesExceeded, nodes[1].Transitions[3].Fail)
}
