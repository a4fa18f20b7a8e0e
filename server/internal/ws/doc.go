// Package ws implements the WebSocket query channel for launchdash-server.
//
// New(dataset, metrics, allowedOrigins) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the dashboard
// options immediately on connect, then answers each query message.
//
// Client → server:
//
//	{"site": "KSC LC-39A", "payload_low": 2000, "payload_high": 8000}
//
// Server → client:
//
//	{"event": "options", "data": { /* GET /api/v1/options */ }}
//	{"event": "update",  "data": {"summary": {...}, "correlation": {...}}}
//	{"event": "error",   "error": "invalid query: ..."}
//
// Replies are sent only in answer to a query; the server never pushes.
// Browser origins are checked against the same list as the REST API's CORS
// policy. The endpoint is mounted at /ws/query.
package ws
