// Package skip implements the skip-objects engine: choosing the active plate
// from print metadata, decoding pick-maps, tracking the operator's selection,
// hit-testing pointer positions, recoloring the overlay and sending the final
// skip command.
//
// # Pick-maps
//
// The printer serves one identification image per plate. Each opaque pixel's
// RGB channels encode the ID of the object drawn there (R is the low byte, B
// the high byte); transparent pixels are background and decode to ID 0.
// DecodeImage turns the pixels into a flat []uint32 once, and every later
// hit-test and overlay render indexes that slice directly.
//
// # Availability
//
// ResolveAvailability checks, in order: metadata present, skip-object data
// present, plate entry present and enabled by the server, 2..64 objects, and
// more than one object still printing. The first failed check becomes the
// ReasonCode shown to the operator.
//
// # Selection
//
// Engine keeps two disjoint sets. Skipped follows the printer and is replaced
// whenever telemetry changes; pending belongs to the operator and is pruned
// when the printer skips one of its objects. A toggle that would leave no
// object printing is refused with ErrSelectionInvalid.
//
// # Flow
//
//	Controller.Sync(input) ──> Resolver ──> Engine.PlateChanged / DeviceSkippedUpdated
//	        │
//	        └── pick URL ──> Decoder.Decode ──> Controller.PickLoaded
//	Click / Toggle ──> Engine.Toggle ──> Overlay (Render)
//	PrepareApply ──> Dispatcher.Apply ──> ApplyFinished ──> Engine.Committed
//
// Controller and Engine are driven from a single goroutine (the UI loop).
// Decoder and Dispatcher are safe to call from background commands.
package skip
