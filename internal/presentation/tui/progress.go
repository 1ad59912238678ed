package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/digest/pkg/domain"
)

// Printer writes styled run output.
type Printer struct {
	out     *termenv.Output
	w       io.Writer
	verbose bool
}

// NewPrinter creates a Printer on w. Colors are dropped when w is not a terminal.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{out: termenv.NewOutput(w), w: w, verbose: verbose}
}

func (p *Printer) styled(s, color string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(color))
}

// ProgressHooks prints one line per step while a run executes.
func (p *Printer) ProgressHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			label := e.Step
			if e.Step == domain.StepEdit && e.Attempt > 1 {
				label = fmt.Sprintf("%s (attempt %d)", e.Step, e.Attempt)
			}
			fmt.Fprintf(p.w, "%s %s\n", p.styled("→", "#38bdf8"), label)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			if e.Error != "" {
				fmt.Fprintf(p.w, "  %s %s\n", p.styled("✗", "#f87171"), e.Error)
				return
			}
			if p.verbose {
				fmt.Fprintf(p.w, "  %s %s %v\n", p.styled("✓", "#4ade80"), e.Duration.Round(1e6), e.Changed)
			}
		},
	}
}

// Record prints the outcome of a run. Content is rendered with render when non-nil.
func (p *Printer) Record(rec *domain.Record, render func(string) (string, error)) {
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%s %s\n", p.styled("Run:", "#a78bfa").Bold(), rec.ID)
	fmt.Fprintf(p.w, "%s %s  %s %s  %s %d\n",
		p.styled("Status:", "#a78bfa").Bold(), p.status(rec.Status),
		p.styled("Style:", "#a78bfa").Bold(), rec.Style,
		p.styled("Retries:", "#a78bfa").Bold(), rec.RetryCount,
	)
	if rec.ErrorMessage != "" {
		fmt.Fprintf(p.w, "%s %s\n", p.styled("Error:", "#f87171").Bold(), rec.ErrorMessage)
	}
	if rec.Feedback != "" {
		fmt.Fprintf(p.w, "%s %s\n", p.styled("Feedback:", "#a78bfa").Bold(), rec.Feedback)
	}
	fmt.Fprintln(p.w)

	content := rec.FinalResult
	if content == "" {
		content = rec.EditedContent
	}
	if content == "" {
		return
	}
	if render != nil {
		if out, err := render(content); err == nil {
			content = out
		}
	}
	fmt.Fprintln(p.w, content)
}

func (p *Printer) status(s domain.RunStatus) termenv.Style {
	switch s {
	case domain.StatusCompleted:
		return p.styled(string(s), "#4ade80")
	case domain.StatusFailed:
		return p.styled(string(s), "#f87171")
	default:
		return p.styled(string(s), "#facc15")
	}
}
