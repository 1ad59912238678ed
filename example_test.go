package digest_test

import (
	"context"
	"fmt"

	"github.com/aretw0/digest"
	"github.com/aretw0/digest/internal/testutils"
	"github.com/aretw0/digest/pkg/adapters/memory"
	"github.com/aretw0/digest/pkg/domain"
)

func ExampleEngine_Run() {
	fakes := testutils.NewCollaborators()
	fakes.Approver = &testutils.Approver{Script: []bool{false}, Default: true}

	eng, err := digest.New(digest.Collaborators{
		Searcher:   fakes.Searcher,
		Summarizer: fakes.Summarizer,
		Editor:     fakes.Editor,
		Approver:   fakes.Approver,
		Feedback:   fakes.Feedback,
		Memory:     memory.NewLog(),
	}, digest.WithIDGenerator(func() string { return "run-42" }))
	if err != nil {
		panic(err)
	}

	rec, err := eng.Run(context.Background(), "tidal power", domain.StyleJournalistic)
	if err != nil {
		panic(err)
	}

	fmt.Println(rec.ID, rec.Status, rec.RetryCount)
	fmt.Println(rec.FinalResult)
	// Output:
	// run-42 completed 1
	// [journalistic v2] Summary of tidal power from Source 1, Source 2, Source 3
}
