package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/digest"
	"github.com/aretw0/digest/internal/testutils"
	"github.com/aretw0/digest/pkg/adapters/memory"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/session"
)

type fixture struct {
	srv   *Server
	fakes *testutils.Collaborators
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fakes := testutils.NewCollaborators()
	eng, err := digest.New(digest.Collaborators{
		Searcher:   fakes.Searcher,
		Summarizer: fakes.Summarizer,
		Editor:     fakes.Editor,
		Approver:   fakes.Approver,
		Feedback:   fakes.Feedback,
		Memory:     memory.NewLog(),
	}, digest.WithMaxRetries(0), digest.WithIDGenerator(func() string { return "run-1" }))
	require.NoError(t, err)

	store := memory.NewStore()
	return &fixture{srv: NewServer(eng, session.NewManager(store)), fakes: fakes, store: store}
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0])
}

func unmarshalResult(t *testing.T, result *mcp.CallToolResult, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(extractText(t, result)), target))
}

func TestToolRegistration(t *testing.T) {
	f := newFixture(t)

	tools := f.srv.MCPServer().ListTools()
	require.Len(t, tools, 5)
	for _, name := range []string{"research", "resume", "history", "stats", "get_graph"} {
		assert.NotNil(t, f.srv.MCPServer().GetTool(name), "tool %s should be registered", name)
	}
}

func TestResearchTool(t *testing.T) {
	f := newFixture(t)

	result, err := f.srv.handleResearch(context.Background(), buildRequest("research", map[string]any{
		"query": "coral reefs",
		"style": "Popularized",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	var rec domain.Record
	unmarshalResult(t, result, &rec)
	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, domain.StylePopularized, rec.Style)
	assert.Equal(t, domain.StatusCompleted, rec.Status)

	stored, err := f.store.Load(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.FinalResult, stored.FinalResult)
}

func TestResearchTool_StoresCancelledRun(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.srv.handleResearch(ctx, buildRequest("research", map[string]any{"query": "coral reefs"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "run-1")

	stored, err := f.store.Load(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestResearchTool_MissingQuery(t *testing.T) {
	f := newFixture(t)

	result, err := f.srv.handleResearch(context.Background(), buildRequest("research", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = f.srv.handleResearch(context.Background(), buildRequest("research", map[string]any{"query": "  "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), domain.ErrEmptyQuery.Error())
}

func TestResumeTool(t *testing.T) {
	f := newFixture(t)
	f.fakes.Approver.Default = false

	result, err := f.srv.handleResearch(context.Background(), buildRequest("research", map[string]any{"query": "q"}))
	require.NoError(t, err)
	var first domain.Record
	unmarshalResult(t, result, &first)
	require.Equal(t, domain.MaxRetriesExceeded, first.ErrorMessage)

	f.fakes.Approver.Default = true
	result, err = f.srv.handleResume(context.Background(), buildRequest("resume", map[string]any{
		"run_id":       "run-1",
		"instructions": "cite sources",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	var rec domain.Record
	unmarshalResult(t, result, &rec)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, "cite sources", rec.HumanInstructions)
}

func TestResumeTool_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"Missing run_id", map[string]any{}},
		{"Unknown run", map[string]any{"run_id": "ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.srv.handleResume(context.Background(), buildRequest("resume", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}

	_, err := f.srv.handleResearch(context.Background(), buildRequest("research", map[string]any{"query": "q"}))
	require.NoError(t, err)
	result, err := f.srv.handleResume(context.Background(), buildRequest("resume", map[string]any{"run_id": "run-1", "step": "publish"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "unknown step")
}

func TestHistoryAndStatsTools(t *testing.T) {
	f := newFixture(t)

	result, err := f.srv.handleHistory(context.Background(), buildRequest("history", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"history": []}`, extractText(t, result))

	_, err = f.srv.handleResearch(context.Background(), buildRequest("research", map[string]any{"query": "q", "style": "technical"}))
	require.NoError(t, err)

	result, err = f.srv.handleStats(context.Background(), buildRequest("stats", nil))
	require.NoError(t, err)
	var stats domain.Stats
	unmarshalResult(t, result, &stats)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, float64(100), stats.ApprovalRate)
	assert.Equal(t, 1, stats.StylesUsed[domain.StyleTechnical])
}

func TestGraphTool(t *testing.T) {
	f := newFixture(t)

	result, err := f.srv.handleGraph(context.Background(), buildRequest("get_graph", nil))
	require.NoError(t, err)

	var nodes []domain.Node
	unmarshalResult(t, result, &nodes)
	require.NotEmpty(t, nodes)
	assert.Equal(t, domain.StepResearch, nodes[0].ID)
}
