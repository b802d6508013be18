// Package state provides thread-safe state management for Skipper.
//
// # Overview
//
// Store holds the latest printer status and the skip-object metadata for the
// loaded gcode file. The background poller writes it; the UI reads copies
// with Snapshot on its own tick.
//
//	Producer (Poller):              Consumer (UI):
//	┌──────────────────────┐       ┌──────────────────┐
//	│ FetchStatus()        │       │                  │
//	│ store.Update()       │──────→│ store.Snapshot() │
//	│ FetchSkipMetadata()  │(mutex)│      ↓           │
//	│ store.UpdateMetadata │       │ skip.Controller  │
//	└──────────────────────┘       └──────────────────┘
//
// # Snapshots
//
// Snapshot returns deep copies of the status and metadata so the UI can keep
// them across ticks without racing the poller.
//
// MetadataVersion increases on every successful metadata fetch and whenever
// metadata is dropped for a new file. Consumers key their caches on it
// instead of comparing metadata contents.
//
// # Failures
//
// A failed status poll keeps the previous status and records the error.
// ConsecutiveFailures counts failures in a row and IsOffline reports two or
// more. A failed metadata fetch for the same file keeps the previous
// metadata; for a different file the old metadata is discarded.
package state
