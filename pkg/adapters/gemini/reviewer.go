package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/aretw0/digest/pkg/ports"
)

// Verdict is the reviewer's structured answer.
type Verdict struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Reviewer is an automated Approver backed by the model.
type Reviewer struct {
	client *Client
}

var _ ports.Approver = (*Reviewer)(nil)

// NewReviewer wraps a client as an Approver.
func NewReviewer(c *Client) *Reviewer {
	return &Reviewer{client: c}
}

// Approve asks the model whether content is publishable.
func (r *Reviewer) Approve(ctx context.Context, content string) (bool, error) {
	v, err := r.Review(ctx, content)
	if err != nil {
		return false, err
	}
	return v.Approved, nil
}

// Review returns the full verdict including the reason.
func (r *Reviewer) Review(ctx context.Context, content string) (Verdict, error) {
	prompt := fmt.Sprintf(`You are an editor reviewing a research digest before publication.
Answer only with a JSON object of the form {"approved": true|false, "reason": "..."}.
Approve when the text is clear, factual and complete.

Text:
%s`, content)

	out, err := r.client.generate(ctx, prompt, "application/json")
	if err != nil {
		return Verdict{}, err
	}

	v, err := ParseVerdict(out)
	if err != nil {
		return Verdict{}, err
	}
	r.client.logger.Debug("review verdict", "approved", v.Approved, "reason", v.Reason)
	return v, nil
}

// ParseVerdict decodes model output, repairing malformed JSON when needed.
func ParseVerdict(out string) (Verdict, error) {
	s := strings.TrimSpace(out)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var v Verdict
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, nil
	}

	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return Verdict{}, fmt.Errorf("unreadable verdict: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return Verdict{}, fmt.Errorf("unreadable verdict: %w", err)
	}
	return v, nil
}
