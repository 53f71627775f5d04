// Package extract provides LLM-backed implementations of the change
// summarizer and opportunity extractor ports. Both adapters prompt a
// generic LLM service for JSON and decode the completion into domain
// types; a malformed or unavailable completion degrades to an empty
// result rather than failing the document.
package extract
