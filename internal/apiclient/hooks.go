package apiclient

import (
	"context"
	"time"
)

// Hooks observe transport activity. Implementations must be safe for
// concurrent use; the metrics collector in internal/observability is the
// production implementation.
type Hooks interface {
	// OnRequest fires before the HTTP request is issued.
	OnRequest(ctx context.Context, method, endpoint string)

	// OnResult fires after the attempt completes. status is zero when the
	// failure happened before a status code was received.
	OnResult(ctx context.Context, method, endpoint string, status int, duration time.Duration, err error)
}
