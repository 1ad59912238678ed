// Package file provides filesystem implementations of the history log (JSON Lines)
// and the record store (one JSON file per run, written atomically).
package file
