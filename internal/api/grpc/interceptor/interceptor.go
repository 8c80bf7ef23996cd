package interceptor

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
)

// RequestIDHeader is read from incoming metadata and echoed back in the response header.
const RequestIDHeader = "x-request-id"

// RequestID tags the context with the caller's request id, or a fresh one.
func RequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 {
				id = ids[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(logger.WithRequestID(ctx, id), req)
	}
}

// Timeout bounds every call. A zero duration leaves the context alone.
func Timeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// Logging records method, outcome and latency of every call.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
		switch code {
		case codes.OK:
			logger.InfoContext(ctx, "RPC completed", args...)
		case codes.Internal, codes.Unknown, codes.DeadlineExceeded:
			logger.ErrorContext(ctx, "RPC failed", append(args, "error", err)...)
		default:
			logger.WarnContext(ctx, "RPC rejected", append(args, "error", err)...)
		}
		return resp, err
	}
}

// Recovery turns a panic in a handler into an Internal error.
func Recovery() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "Handler panicked", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// Chain is the server option installing the interceptors in their working order.
func Chain(timeout time.Duration) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(Recovery(), RequestID(), Logging(), Timeout(timeout))
}
