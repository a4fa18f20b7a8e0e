package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/obsidianstack/launchdash/server/internal/api"
)

// Client calls the query service over a gRPC connection.
type Client struct {
	conn *grpc.ClientConn
}

// Dial opens an insecure connection to the query service at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := grpc.DialContext(ctx, addr, //nolint:staticcheck // deprecated in 1.63 but DialContext is used for compat
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Options fetches the dropdown and slider settings.
func (c *Client) Options(ctx context.Context) (api.OptionsResponse, error) {
	var out api.OptionsResponse
	err := c.invoke(ctx, MethodOptions, struct{}{}, &out)
	return out, err
}

// Summarize fetches the aggregate view for site. An empty site means ALL.
func (c *Client) Summarize(ctx context.Context, site string) (api.SummaryResponse, error) {
	var out api.SummaryResponse
	err := c.invoke(ctx, MethodSummarize, SummarizeRequest{Site: site}, &out)
	return out, err
}

// Correlate fetches the payload/outcome view for req.
func (c *Client) Correlate(ctx context.Context, req api.QueryRequest) (api.CorrelationResponse, error) {
	var out api.CorrelationResponse
	err := c.invoke(ctx, MethodCorrelate, req, &out)
	return out, err
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	req, err := toStruct(in)
	if err != nil {
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), req, resp); err != nil {
		return err
	}
	if err := fromStruct(resp, out, false); err != nil {
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	return nil
}
