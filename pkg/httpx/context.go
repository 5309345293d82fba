package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated account id. The authentication
// middleware sets it; the per-user rate limiter reads it.
const CtxKeyUserID ctxKey = "user_id"

// WithUserID stamps the authenticated account id onto the context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, id)
}

// UserIDFrom returns the authenticated account id, or "" when anonymous.
func UserIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
