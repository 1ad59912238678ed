// Package runtime contains the executor that walks the step graph.
//
// Each step receives a private copy of the record and returns a partial update.
// The engine checks the update against the record schema and the step's declared
// ownership before merging it, then consults the graph for the next step.
package runtime
