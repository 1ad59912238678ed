// Package redis provides Redis-backed history log, record store, and distributed
// locker so several host replicas can share runs.
package redis
