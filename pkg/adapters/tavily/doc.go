// Package tavily implements the search collaborator on the Tavily web search API.
package tavily
