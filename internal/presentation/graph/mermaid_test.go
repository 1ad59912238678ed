package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/digest/internal/presentation/graph"
	"github.com/aretw0/digest/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []domain.Node
		overlay  *graph.GraphOverlay
		contains []string
		absent   []string
	}{
		{
			name: "Node Shapes",
			nodes: []domain.Node{
				{ID: "research", Kind: domain.NodeKindEdge, Transitions: []domain.Transition{{ToNodeID: "validate"}}},
				{ID: "validate", Kind: domain.NodeKindRouter},
				{ID: "plain", Kind: domain.NodeKindEdge},
				{ID: "finalize", Kind: domain.NodeKindTerminal, Transitions: []domain.Transition{{ToNodeID: "__end__"}}},
			},
			contains: []string{
				`research(["research"])`,
				`validate{"validate"}`,
				`plain["plain"]`,
				`finalize[["finalize"]]`,
				"research --> validate",
				"finalize --> __end__",
				`__end__(("End"))`,
			},
		},
		{
			name: "Labelled, Retry and Fail Edges",
			nodes: []domain.Node{
				{ID: "edit"},
				{
					ID:   "validate",
					Kind: domain.NodeKindRouter,
					Transitions: []domain.Transition{
						{ToNodeID: "feedback", Label: "approved"},
						{ToNodeID: "edit", Label: "rejected", Retry: true},
						{ToNodeID: "__end__", Label: "exhausted", Fail: `max "retries"`},
					},
				},
			},
			contains: []string{
				`validate -- "approved" --> feedback`,
				`validate -. "rejected" .-> edit`,
				`validate -- "exhausted: max 'retries'" --> __end__`,
			},
		},
		{
			name:   "ID Sanitization",
			nodes:  []domain.Node{{ID: "path/to/file.md"}, {ID: "hyphen-ated"}},
			absent: []string{"End"},
			contains: []string{
				`path_to_file_md(["path/to/file.md"])`,
				`hyphen_ated["hyphen-ated"]`,
			},
		},
		{
			name:  "Overlay",
			nodes: []domain.Node{{ID: "research"}, {ID: "edit"}},
			overlay: graph.OverlayFor(&domain.Record{
				History:     []string{"research", "edit", "edit"},
				CurrentStep: "edit",
			}),
			contains: []string{
				"class research visited;",
				"class edit visited;",
				"class edit current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.nodes, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
			if n := strings.Count(got, "class edit visited;"); n > 1 {
				t.Errorf("visited class applied %d times", n)
			}
		})
	}
}

func TestOverlayFor_Nil(t *testing.T) {
	if graph.OverlayFor(nil) != nil {
		t.Error("expected nil overlay for nil record")
	}
}
