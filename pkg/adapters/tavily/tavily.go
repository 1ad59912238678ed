package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/aretw0/digest/internal/logging"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

const (
	// DefaultBaseURL is the public Tavily API.
	DefaultBaseURL = "https://api.tavily.com"

	// maxResults is the API ceiling.
	maxResults = 20
)

// ErrMissingAPIKey is returned when the client is used without credentials.
var ErrMissingAPIKey = errors.New("tavily API key is not set")

var htmlTag = regexp.MustCompile(`<(?i:p|div|span|a|br|h[1-6]|ul|ol|li|table|strong|em|b|i)\b[^>]*>`)

// Client implements ports.Searcher on the Tavily search API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.Searcher = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Tavily client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title      string   `json:"title"`
		URL        string   `json:"url"`
		Content    string   `json:"content"`
		RawContent string   `json:"raw_content"`
		Score      *float64 `json:"score"`
	} `json:"results"`
}

type apiError struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// Search runs a web search and returns normalized results.
func (c *Client) Search(ctx context.Context, query string, limit int, depth ports.SearchDepth) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > maxResults {
		limit = maxResults
	}
	if depth == "" {
		depth = ports.SearchAdvanced
	}

	body, err := json.Marshal(searchRequest{
		APIKey:            c.apiKey,
		Query:             query,
		MaxResults:        limit,
		SearchDepth:       string(depth),
		IncludeAnswer:     true,
		IncludeRawContent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Detail.Error != "" {
			return nil, fmt.Errorf("tavily API error (status %d): %s", resp.StatusCode, apiErr.Detail.Error)
		}
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, excerpt(raw, 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		content := r.Content
		if strings.TrimSpace(content) == "" {
			content = r.RawContent
		}
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: c.normalize(content),
			Score:   r.Score,
		})
	}

	c.logger.Debug("tavily search done", "query", query, "results", len(results), "took", time.Since(started))
	return results, nil
}

// normalize converts HTML snippets to Markdown so summaries don't carry markup.
func (c *Client) normalize(content string) string {
	if !htmlTag.MatchString(content) {
		return strings.TrimSpace(content)
	}
	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		c.logger.Debug("html conversion failed, keeping raw content", "err", err)
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(md)
}

func excerpt(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
