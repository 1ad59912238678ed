/*
Package session serializes access to stored run records.

Hosts that let clients resume runs (HTTP, MCP) load, re-execute and save a record
as one unit. The Manager guards that unit with a per-run mutex and, when several
replicas share a store, with a distributed lock.
*/
package session
