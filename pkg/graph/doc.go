/*
Package graph provides a fluent builder for the step graph the executor walks.

Nodes bind a step and exactly one outgoing rule: an unconditional edge, a router
with labelled branches, or a terminal declaration. Build validates the wiring
so the executor never meets an undefined target at run time.

Example usage:

	b := graph.New()
	b.Add("edit").Step(edit).Go("validate")
	b.Add("validate").Step(validate).
		Route(graph.ValidationRouter(5)).
		Branch("approved", "finalize").
		Branch("rejected", "edit").Retry("rejected").
		Branch("error", graph.End).
		Fail("exhausted", "max retries exceeded")
	b.Add("finalize").Step(finalize).Terminal()

	g, err := b.Build()
*/
package graph
