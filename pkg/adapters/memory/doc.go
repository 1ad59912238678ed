// Package memory provides in-process implementations of the history log and
// the record store, used by tests and by single-process hosts.
package memory
