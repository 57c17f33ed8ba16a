// Package events defines the study lifecycle events published on the event bus.
//
// Available event types:
//   - StudyEvent with Kind started, completed or failed
package events
