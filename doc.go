/*
Package digest orchestrates a research pipeline: web search, summarization,
stylistic editing, human-in-the-loop validation, feedback, and persisted memory.

The pipeline is a graph of steps walked by a small executor. Each step reads a
private copy of the shared record and returns only the fields it owns. A router
after validation either advances to feedback, sends the draft back to the editor
(bounded by a retry budget), or ends the run.

# Usage

	eng, err := digest.New(digest.Collaborators{
		Searcher:   tavily.New(tavilyKey),
		Summarizer: llm,
		Editor:     llm,
		Approver:   approval.Random(0.9),
		Feedback:   feedback.NewCanned(),
		Memory:     file.NewLog("research_memory.jsonl"),
	}, digest.WithMaxRetries(3))
	if err != nil {
		log.Fatal(err)
	}

	rec, err := eng.Run(ctx, "quantum error correction", domain.StyleTechnical)
	if err != nil {
		log.Fatal(err)
	}
	if rec.Failed() {
		log.Printf("run failed: %s", rec.ErrorMessage)
	}

	// A reviewer asks for changes: re-enter at the edit step.
	rec, err = eng.Resume(ctx, rec, domain.StepEdit, "add a section on surface codes")

Run never returns an error for ordinary pipeline failures; those surface as
ErrorMessage on the returned record. Errors are reserved for invalid requests,
cancellation, and engine faults such as a step writing a field it does not own.
*/
package digest
