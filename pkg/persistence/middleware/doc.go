// Package middleware decorates a ports.RecordStore with at-rest protections:
// AES-GCM encryption with key rotation, and masking of personal data scraped
// into run records.
package middleware
