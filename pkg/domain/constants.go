package domain

// Step names of the research pipeline.
const (
	StepResearch  = "research"
	StepSummarize = "summarize"
	StepEdit      = "edit"
	StepValidate  = "validate"
	StepFeedback  = "feedback"
	StepMemory    = "memory"
	StepFinalize  = "finalize"
)

// Router labels emitted after validation.
const (
	LabelApproved  = "approved"
	LabelRejected  = "rejected"
	LabelError     = "error"
	LabelExhausted = "exhausted"
)

const (
	// IncompleteResult is stored in FinalResult when the run ended without approved content.
	IncompleteResult = "incomplete or rejected processing"

	// MaxRetriesExceeded is the ErrorMessage of a run whose retry budget ran out.
	MaxRetriesExceeded = "max retries exceeded"

	// DefaultMaxRetries bounds the validate -> edit back-edge.
	DefaultMaxRetries = 5
)
