// Package mcp exposes the research pipeline to MCP clients over stdio or SSE.
package mcp
