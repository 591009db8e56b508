// Package context carries request-scoped identifiers used for log
// correlation. Values are plain strings; a missing value reads as "".
package context

import "context"

type key int

const (
	requestIDKey key = iota
	userIDKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	return get(ctx, requestIDKey)
}

// WithUserID records the authenticated account behind the request.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func GetUserID(ctx context.Context) string {
	return get(ctx, userIDKey)
}

func get(ctx context.Context, k key) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(k).(string)
	return v
}
