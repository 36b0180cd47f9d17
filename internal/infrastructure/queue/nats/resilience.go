package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
)

// isPublishFailure counts connectivity problems against the breaker.
func isPublishFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, nats.ErrBadSubject) || errors.Is(err, nats.ErrMaxPayload) {
		return false
	}
	return true
}
