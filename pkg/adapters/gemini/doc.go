// Package gemini implements the summarizer, editor and reviewer collaborators
// on Google's Gemini generateContent API.
package gemini
