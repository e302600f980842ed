package middleware

import "context"

type contextKey string

const (
	ctxCartClientID contextKey = "cart_client_id"
)

// CartClientIDFromContext returns the cart scope resolved by CartClient.
func CartClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartClientID).(string); ok {
		return v
	}
	return ""
}

// WithCartClientID injects the cart scope into the context.
func WithCartClientID(ctx context.Context, clientID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartClientID, clientID)
}
