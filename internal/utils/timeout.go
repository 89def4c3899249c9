package utils

import (
	"context"
	"time"
)

const (
	DefaultDBTimeout      = 5 * time.Second
	DefaultGatewayTimeout = 10 * time.Second
)

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultDBTimeout)
}

// WithGatewayTimeout bounds one outbound gateway call. A non-positive d uses
// DefaultGatewayTimeout.
func WithGatewayTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultGatewayTimeout
	}

	return context.WithTimeout(ctx, d)
}
