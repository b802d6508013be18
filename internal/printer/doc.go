// Package printer is the HTTP client for the printer bridge API.
//
// # Endpoints
//
//	GET  /api/status                 print state, progress, skipped objects
//	GET  /api/skip-metadata?file=X   plates, objects and pick-map URLs for X
//	GET  <pick_url>                  pick-map image, relative to the base URL
//	POST /api/skip-objects           {"obj_list": [...], "sequence_id": "0"}
//
// Every request carries a User-Agent and a fresh X-Request-ID so bridge logs
// can be matched to Skipper's. Error responses with a JSON {"error": "..."}
// body surface that message in the returned error.
//
// DeviceClient is the interface the poller, the pick-map decoder and the
// skip dispatcher depend on; Client is the HTTP implementation.
package printer
