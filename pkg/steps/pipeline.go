package steps

import (
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/graph"
	"github.com/aretw0/digest/pkg/ports"
)

// Collaborators are the external services the pipeline steps depend on.
type Collaborators struct {
	Searcher   ports.Searcher
	Summarizer ports.Summarizer
	Editor     ports.Editor
	Approver   ports.Approver
	Feedback   ports.FeedbackCollector
	Memory     ports.MemoryLog
}

// Missing names the collaborators left nil.
func (c Collaborators) Missing() []string {
	var missing []string
	if c.Searcher == nil {
		missing = append(missing, "searcher")
	}
	if c.Summarizer == nil {
		missing = append(missing, "summarizer")
	}
	if c.Editor == nil {
		missing = append(missing, "editor")
	}
	if c.Approver == nil {
		missing = append(missing, "approver")
	}
	if c.Feedback == nil {
		missing = append(missing, "feedback")
	}
	if c.Memory == nil {
		missing = append(missing, "memory")
	}
	return missing
}

// Config tunes the pipeline.
type Config struct {
	MaxRetries int
	MaxResults int
	Depth      ports.SearchDepth
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries: domain.DefaultMaxRetries,
		MaxResults: 5,
		Depth:      ports.SearchAdvanced,
	}
}

// NewPipeline wires the research pipeline:
//
//	research -> summarize -> edit -> validate
//	validate: approved -> feedback, rejected -> edit, error -> end, exhausted -> end
//	feedback -> memory -> finalize -> end
func NewPipeline(c Collaborators, cfg Config) (*graph.Graph, error) {
	if missing := c.Missing(); len(missing) > 0 {
		return nil, &domain.ConfigError{Missing: missing}
	}

	b := graph.New().Entry(domain.StepResearch)
	b.Add(domain.StepResearch).
		Step(&Research{Searcher: c.Searcher, MaxResults: cfg.MaxResults, Depth: cfg.Depth}).
		Go(domain.StepSummarize)
	b.Add(domain.StepSummarize).
		Step(&Summarize{Summarizer: c.Summarizer}).
		Go(domain.StepEdit)
	b.Add(domain.StepEdit).
		Step(&Edit{Editor: c.Editor}).
		Go(domain.StepValidate)
	b.Add(domain.StepValidate).
		Step(&Validate{Approver: c.Approver}).
		Route(graph.ValidationRouter(cfg.MaxRetries)).
		Branch(domain.LabelError, graph.End).
		Branch(domain.LabelApproved, domain.StepFeedback).
		Branch(domain.LabelRejected, domain.StepEdit).Retry(domain.LabelRejected).
		Fail(domain.LabelExhausted, domain.MaxRetriesExceeded)
	b.Add(domain.StepFeedback).
		Step(&Feedback{Collector: c.Feedback}).
		Go(domain.StepMemory)
	b.Add(domain.StepMemory).
		Step(&Memory{Log: c.Memory}).
		Go(domain.StepFinalize)
	b.Add(domain.StepFinalize).
		Step(Finalize{}).
		Terminal()

	return b.Build()
}
