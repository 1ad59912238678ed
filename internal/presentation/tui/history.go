package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/digest/pkg/domain"
)

const previewWidth = 72

// History prints one block per memory entry, oldest first.
func (p *Printer) History(entries []domain.MemoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, "No research history yet.")
		return
	}
	for i, e := range entries {
		mark := p.styled("✓", "#4ade80")
		if !e.ValidationApproved {
			mark = p.styled("✗", "#f87171")
		}
		fmt.Fprintf(p.w, "%3d. %s %s  %s\n", i+1, mark, p.styled(e.Query, "#e5e7eb").Bold(), e.Timestamp.Format("2006-01-02 15:04"))
		fmt.Fprintf(p.w, "     style=%s sources=%d", e.Style, e.SearchResultCount)
		if e.RunID != "" {
			fmt.Fprintf(p.w, " run=%s", e.RunID)
		}
		fmt.Fprintln(p.w)
		if preview := Preview(e.FinalContent, previewWidth); preview != "" {
			fmt.Fprintf(p.w, "     %s\n", p.styled(preview, "#9ca3af"))
		}
	}
}

// Stats prints aggregate history statistics.
func (p *Printer) Stats(s domain.Stats) {
	label := func(l string) string { return p.styled(l, "#a78bfa").Bold().String() }

	fmt.Fprintf(p.w, "%s %d\n", label("Total runs:"), s.Total)
	fmt.Fprintf(p.w, "%s %d (%.2f%%)\n", label("Approved:"), s.Approved, s.ApprovalRate)
	if s.LastRun != nil {
		fmt.Fprintf(p.w, "%s %s\n", label("Last run:"), s.LastRun.Format("2006-01-02 15:04:05"))
	}
	if len(s.StylesUsed) == 0 {
		return
	}

	styles := make([]string, 0, len(s.StylesUsed))
	for st := range s.StylesUsed {
		styles = append(styles, string(st))
	}
	sort.Strings(styles)
	fmt.Fprintln(p.w, label("Styles:"))
	for _, st := range styles {
		fmt.Fprintf(p.w, "  %-14s %d\n", st, s.StylesUsed[domain.Style(st)])
	}
}

// Preview collapses whitespace and truncates s to at most width runes.
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
