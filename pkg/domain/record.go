package domain

import (
	"time"
)

// RunStatus defines where a run is in its lifecycle.
type RunStatus string

const (
	StatusActive    RunStatus = "active"    // Executor is still walking the graph
	StatusCompleted RunStatus = "completed" // Terminal reached without an error
	StatusFailed    RunStatus = "failed"    // Terminal reached with ErrorMessage set
	StatusCancelled RunStatus = "cancelled" // Context cancelled between steps
)

// SearchResult is a single hit returned by the search collaborator.
type SearchResult struct {
	Title   string   `json:"title" mapstructure:"title"`
	URL     string   `json:"url" mapstructure:"url"`
	Content string   `json:"content" mapstructure:"content"`
	Score   *float64 `json:"score,omitempty" mapstructure:"score"`
}

// Record is the shared state threaded through the pipeline.
//
// Fields tagged with a mapstructure name form the schema that step updates are
// checked against. Fields tagged "-" are owned by the executor and the run
// controller and can never be written through an Update.
type Record struct {
	ID     string    `json:"id" mapstructure:"-"`
	Status RunStatus `json:"status" mapstructure:"-"`

	Query string `json:"query" mapstructure:"query"`
	Style Style  `json:"style" mapstructure:"style"`

	SearchResults      []SearchResult `json:"searchResults,omitempty" mapstructure:"searchResults"`
	Summary            string         `json:"summary,omitempty" mapstructure:"summary"`
	HumanInstructions  string         `json:"humanInstructions,omitempty" mapstructure:"humanInstructions"`
	EditedContent      string         `json:"editedContent,omitempty" mapstructure:"editedContent"`
	ValidationApproved *bool          `json:"validationApproved,omitempty" mapstructure:"validationApproved"`
	Feedback           string         `json:"feedback,omitempty" mapstructure:"feedback"`
	SavedToMemory      bool           `json:"savedToMemory,omitempty" mapstructure:"savedToMemory"`
	FinalResult        string         `json:"finalResult,omitempty" mapstructure:"finalResult"`
	ErrorMessage       string         `json:"errorMessage,omitempty" mapstructure:"errorMessage"`

	CurrentStep string   `json:"currentStep,omitempty" mapstructure:"-"`
	History     []string `json:"history,omitempty" mapstructure:"-"`
	RetryCount  int      `json:"retryCount" mapstructure:"-"`

	CreatedAt time.Time `json:"createdAt" mapstructure:"-"`
	UpdatedAt time.Time `json:"updatedAt" mapstructure:"-"`

	// Sealed holds the ciphertext of an encrypted record at rest.
	// Only stored envelopes carry it.
	Sealed string `json:"sealed,omitempty" mapstructure:"-"`
}

// NewRecord creates a clean record for a new run.
func NewRecord(id, query string, style Style, now time.Time) *Record {
	return &Record{
		ID:        id,
		Status:    StatusActive,
		Query:     query,
		Style:     style,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Approved reports whether the validation step approved the edited content.
func (r *Record) Approved() bool {
	return r.ValidationApproved != nil && *r.ValidationApproved
}

// Failed reports whether any step recorded an error.
func (r *Record) Failed() bool {
	return r.ErrorMessage != ""
}

// Clone returns a copy that shares no mutable memory with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	next := *r
	if r.SearchResults != nil {
		next.SearchResults = make([]SearchResult, len(r.SearchResults))
		for i, res := range r.SearchResults {
			next.SearchResults[i] = res
			if res.Score != nil {
				score := *res.Score
				next.SearchResults[i].Score = &score
			}
		}
	}
	if r.ValidationApproved != nil {
		approved := *r.ValidationApproved
		next.ValidationApproved = &approved
	}
	if r.History != nil {
		next.History = append([]string(nil), r.History...)
	}
	return &next
}
