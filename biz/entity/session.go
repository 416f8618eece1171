package entity

import "context"

type sessionCtxKey struct{}

// WithSessionID 把匿名会话ID放进 ctx
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sessionID)
}

func GetSessionID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionCtxKey{}).(string)
	return id, ok && id != ""
}
