// Package app provides the orchestration layer for the Skipper application.
//
// # Overview
//
// This package wires together configuration, polling, state management, the
// skip-objects engine and the UI. It is the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load configuration from ~/.config/skipper/config.toml
//  2. Route the standard logger to the configured log file
//  3. Initialize the HTTP client for the printer API
//  4. Create the shared state.Store for UI and poller coordination
//  5. Launch the background poller goroutine
//  6. Build the pick-map decoder and skip dispatcher on the same client
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read skipper config
//	       ├─────> tea.LogToFile()      Logger to file
//	       ├─────> printer.NewClient()  HTTP client
//	       ├─────> state.Store{}        Shared state container
//	       ├─────> Poller.Start()       Background updates
//	       └─────> ui.Run()             TUI (blocks)
//
//	Background Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ Poller goroutine                        │
//	│  ├─> FetchStatus()                      │
//	│  ├─> FetchSkipMetadata() on file change │
//	│  └─> store.Update*()                    │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// Status is polled every interval (default 2 seconds). Consecutive failures
// back off exponentially up to 30 seconds. Skip metadata is fetched once per
// gcode file; a failed fetch is retried after metadata_retry_seconds.
//
// # Error Handling
//
// Configuration, log file and client setup errors are returned from Run.
// Poll failures are logged and recorded in the store; the UI shows them in
// its header and keeps running.
package app
