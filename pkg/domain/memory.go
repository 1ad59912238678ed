package domain

import (
	"math"
	"time"
)

// MemoryEntry is the subset of a finished run persisted in the history log.
type MemoryEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	RunID              string    `json:"runId,omitempty"`
	Query              string    `json:"query"`
	Style              Style     `json:"style"`
	FinalContent       string    `json:"finalContent"`
	ValidationApproved bool      `json:"validationApproved"`
	Feedback           string    `json:"feedback,omitempty"`
	SearchResultCount  int       `json:"searchResultCount"`
}

// NewMemoryEntry projects a record onto the persisted history shape.
func NewMemoryEntry(r *Record) MemoryEntry {
	return MemoryEntry{
		Timestamp:          r.CreatedAt,
		RunID:              r.ID,
		Query:              r.Query,
		Style:              r.Style,
		FinalContent:       r.EditedContent,
		ValidationApproved: r.Approved(),
		Feedback:           r.Feedback,
		SearchResultCount:  len(r.SearchResults),
	}
}

// Stats aggregates the history log.
type Stats struct {
	Total        int           `json:"total"`
	Approved     int           `json:"approved"`
	ApprovalRate float64       `json:"approvalRate"` // Percentage, two decimals
	StylesUsed   map[Style]int `json:"stylesUsed"`
	LastRun      *time.Time    `json:"lastRun,omitempty"`
}

// ComputeStats derives Stats from history entries in append order.
func ComputeStats(entries []MemoryEntry) Stats {
	stats := Stats{
		Total:      len(entries),
		StylesUsed: make(map[Style]int),
	}
	for _, e := range entries {
		if e.ValidationApproved {
			stats.Approved++
		}
		style := e.Style
		if style == "" {
			style = "unknown"
		}
		stats.StylesUsed[style]++
	}
	if stats.Total > 0 {
		rate := float64(stats.Approved) / float64(stats.Total) * 100
		stats.ApprovalRate = math.Round(rate*100) / 100
		last := entries[len(entries)-1].Timestamp
		stats.LastRun = &last
	}
	return stats
}
