// Package http hosts the research pipeline behind a chi router.
//
// Runs are executed synchronously: POST /research returns the terminal record,
// which is also stored under its ID for later lookup and resumption. Lifecycle
// events are streamed to GET /events subscribers as Server-Sent Events.
package http
