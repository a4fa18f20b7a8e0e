package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/obsidianstack/launchdash/server/internal/logging"
)

// LoggingInterceptor returns a gRPC UnaryServerInterceptor that logs every
// call with its method, status code and duration. Failed calls log at warn,
// the rest at debug.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	log := logging.New("rpc")
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"took", time.Since(start),
		}
		if err != nil {
			log.Warn("call failed", append(attrs, "err", err)...)
		} else {
			log.Debug("call", attrs...)
		}
		return resp, err
	}
}
