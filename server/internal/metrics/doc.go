// Package metrics exposes launchdash's Prometheus metrics and reads them back.
//
// New() builds a private registry with:
//
//	launchdash_queries_total{kind,transport}   queries answered
//	launchdash_query_invalid_total{transport}  queries rejected as malformed
//	launchdash_dataset_records                 records in the loaded dataset
//	launchdash_dataset_sites                   distinct launch sites
//	launchdash_dataset_load_seconds            time taken by the startup load
//	launchdash_ws_clients                      open WebSocket query channels
//
// plus the Go runtime and process collectors. Handler() serves the registry
// in the text exposition format at /metrics.
//
// Fetch and SumFamily parse an exposition back into client_model metric
// families; launchq uses them to print query counters.
//
// All Metrics methods are safe on a nil *Metrics, which records nothing.
package metrics
