// Package process runs external programs as pipeline collaborators.
//
// Its Approver lets a team plug any reviewer script into the validate step:
// the draft arrives on stdin and the exit code carries the decision.
package process
