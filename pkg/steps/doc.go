/*
Package steps implements the stages of the research pipeline.

Every step reads a copy of the record, calls at most one collaborator, and
returns only the fields it owns. Collaborator faults become an errorMessage
update; nothing is returned through panics or errors.
*/
package steps
