package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/obsidianstack/launchdash/server/internal/api"
	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/metrics"
	"github.com/obsidianstack/launchdash/server/internal/query"
)

// SummarizeRequest is the body of a Summarize call.
type SummarizeRequest struct {
	Site string `json:"site"`
}

// Server implements QueryServer over an immutable dataset.
type Server struct {
	ds      *dataset.Dataset
	metrics *metrics.Metrics
}

// NewServer creates a Server answering from ds. m may be nil.
func NewServer(ds *dataset.Dataset, m *metrics.Metrics) *Server {
	return &Server{ds: ds, metrics: m}
}

// Options returns the dropdown and slider settings. The request must be empty.
func (s *Server) Options(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := fromStruct(in, &struct{}{}, true); err != nil {
		return nil, s.invalid(err)
	}
	s.metrics.ObserveQuery(metrics.KindOptions, metrics.TransportGRPC)
	return reply(api.BuildOptions(s.ds))
}

// Summarize returns the aggregate view for the requested site.
func (s *Server) Summarize(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SummarizeRequest
	if err := fromStruct(in, &req, true); err != nil {
		return nil, s.invalid(err)
	}
	s.metrics.ObserveQuery(metrics.KindSummary, metrics.TransportGRPC)
	return reply(api.BuildSummary(s.ds, req.Site))
}

// Correlate returns the payload/outcome view for the requested selection.
func (s *Server) Correlate(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.QueryRequest
	if err := fromStruct(in, &req, true); err != nil {
		return nil, s.invalid(err)
	}
	q, err := req.Query(s.ds)
	if err != nil {
		return nil, s.invalid(err)
	}
	s.metrics.ObserveQuery(metrics.KindCorrelation, metrics.TransportGRPC)
	return reply(api.BuildCorrelation(s.ds, q))
}

// invalid counts a rejected request and maps err to codes.InvalidArgument.
func (s *Server) invalid(err error) error {
	s.metrics.ObserveInvalid(metrics.TransportGRPC)
	if !errors.Is(err, query.ErrInvalidQuery) {
		err = fmt.Errorf("%w: %v", query.ErrInvalidQuery, err)
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

func reply(v interface{}) (*structpb.Struct, error) {
	st, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}
