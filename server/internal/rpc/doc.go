// Package rpc implements the launchdash.v1.QueryService gRPC service and a
// client for it.
//
// The service has three unary methods whose request and response messages
// are google.protobuf.Struct values shaped like the REST JSON bodies:
//
//	Options   {}                                         → api.OptionsResponse
//	Summarize {"site": "ALL"}                            → api.SummaryResponse
//	Correlate {"site", "payload_low", "payload_high"}    → api.CorrelationResponse
//
// A request with unknown fields, wrongly typed fields or non-finite bounds is
// rejected with codes.InvalidArgument. Missing fields take the same defaults
// as the REST API.
//
// Register(s, NewServer(ds, m)) mounts the service on a *grpc.Server.
// Dial(ctx, addr) returns a Client used by the launchq CLI.
package rpc
