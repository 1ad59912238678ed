// Package approval provides Approver implementations for the validation step:
// a fixed verdict, a simulated reviewer, an expression rule and an interactive
// terminal prompt.
package approval
