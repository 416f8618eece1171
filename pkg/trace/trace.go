package trace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type traceKey string

const (
	traceIDKey     traceKey = "trace_id"
	requestTimeKey traceKey = "request_time"

	// RequestIDHeader 网关注入的请求 ID
	RequestIDHeader = "X-Request-ID"
)

// ResolveTraceID 优先使用上游传入的 ID
func ResolveTraceID(upstream string) string {
	if upstream != "" {
		return upstream
	}
	return uuid.New().String()
}

func WithTrace(ctx context.Context, traceID string, start time.Time) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	return context.WithValue(ctx, requestTimeKey, start)
}

func GetTraceID(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKey).(string)
	return traceID, ok
}

// Elapsed 请求开始至今的耗时，没有记录开始时间时返回 0
func Elapsed(ctx context.Context) time.Duration {
	start, ok := ctx.Value(requestTimeKey).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
