package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/digest/pkg/domain"
)

func (s *Server) handleResearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}
	style := domain.ParseStyle(req.GetString("style", ""))

	rec, err := s.pipeline.Run(ctx, query, style)
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("research failed: %v", err)), nil
	}
	if serr := s.sessions.Save(context.WithoutCancel(ctx), rec); serr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store run: %v", serr)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("research failed: %v (run %s stored)", err, rec.ID)), nil
	}

	s.logger.Info("MCP run stored", "run_id", rec.ID, "status", rec.Status)
	return marshalResult(rec)
}

func (s *Server) handleResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := req.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("run_id is required"), nil
	}
	instructions := req.GetString("instructions", "")
	step := req.GetString("step", "")

	rec, err := s.sessions.Update(ctx, runID, func(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
		return s.pipeline.Resume(ctx, rec, step, instructions)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resume failed: %v", err)), nil
	}
	return marshalResult(rec)
}

func (s *Server) handleHistory(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.pipeline.History(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	if entries == nil {
		entries = []domain.MemoryEntry{}
	}
	return marshalResult(map[string]any{"history": entries})
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.pipeline.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return marshalResult(stats)
}

func (s *Server) handleGraph(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return marshalResult(s.pipeline.Inspect())
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Pipeline Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.pipeline.Inspect())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
