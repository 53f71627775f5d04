// Package services implements the driving port interfaces.
// Services contain the core business logic - deduplication, version
// tracking, retrieval and pipeline orchestration - and coordinate
// calls to driven ports (adapters).
//
// Services are pure Go with no external side effects of their own.
package services
