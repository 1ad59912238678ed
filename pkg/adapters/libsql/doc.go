// Package libsql stores the history log and run records in an embedded libSQL
// (SQLite) database file. Schema changes are applied as numbered migrations on Open.
package libsql
