// Package tui renders run progress and results on the terminal.
package tui
