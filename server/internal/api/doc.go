// Package api implements the HTTP REST API for launchdash-server.
//
// New(dataset, metrics, origins) returns an http.Handler that serves:
//
//	GET /api/v1/health                       — record/site counts, payload bounds
//	GET /api/v1/options                      — site dropdown + range slider settings
//	GET /api/v1/summary?site=ALL             — aggregate (pie) view
//	GET /api/v1/correlation?site=&low=&high= — payload/outcome (scatter) view
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods and 404 for unknown paths
//   - Read from the immutable Dataset only; nothing is cached or stored
//
// The Build* functions produce the same JSON shapes for the WebSocket and
// gRPC transports. Routing uses go-chi; CORS uses go-chi/cors.
package api
