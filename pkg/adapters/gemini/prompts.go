package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

var (
	_ ports.Summarizer = (*Client)(nil)
	_ ports.Editor     = (*Client)(nil)
)

var styleGuidance = map[domain.Style]string{
	domain.StyleAcademic:     "Use precise language, cite references and keep a clear structure.",
	domain.StyleJournalistic: "Make the text accessible and use catchy headlines.",
	domain.StyleTechnical:    "Use the appropriate terminology and be precise.",
	domain.StylePopularized:  "Simplify the concepts and use concrete examples.",
}

// Summarize condenses numbered sources into a structured summary.
func (c *Client) Summarize(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "Source %d: %s\n%s\n\n", i+1, r.Title, r.Content)
	}

	prompt := fmt.Sprintf(`You are an expert at synthesizing information. Summarize the following material clearly and in a structured way.

%s
Instructions:
- Write a coherent and informative summary
- Organize the information by main themes
- Cite the important sources
- Keep an objective, professional tone
- Stay under 500 words`, sb.String())

	return c.generate(ctx, prompt, "")
}

// Edit rewrites content in the requested style. Unknown styles are passed to
// the model verbatim.
func (c *Client) Edit(ctx context.Context, text string, style domain.Style, instructions string) (string, error) {
	guidance, ok := styleGuidance[style]
	if !ok {
		guidance = fmt.Sprintf("Follow the conventions of a %q register.", string(style))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert writer. Rewrite the following text in a %s style.\n\n", style)
	fmt.Fprintf(&sb, "Original text:\n%s\n\n", text)
	fmt.Fprintf(&sb, "Style guidance: %s\n", guidance)
	if strings.TrimSpace(instructions) != "" {
		fmt.Fprintf(&sb, "\nReviewer instructions (take priority):\n%s\n", strings.TrimSpace(instructions))
	}
	sb.WriteString("\nKeep all important information while adapting the style.")

	return c.generate(ctx, sb.String(), "")
}
