package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/resilience"
)

// isBreakerFailure counts transport failures and server-side statuses only.
// A 4xx says nothing about upstream health.
func isBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return upstream.StatusCode >= http.StatusInternalServerError ||
			upstream.StatusCode == http.StatusTooManyRequests ||
			upstream.StatusCode == http.StatusRequestTimeout
	}
	return true
}

// asUpstreamError guarantees the caller sees a *domain.UpstreamError,
// including for breaker rejections and context expiry.
func asUpstreamError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return err
	}
	if resilience.IsCircuitOpen(err) {
		return &domain.UpstreamError{Operation: operation, Body: "circuit open", Err: err}
	}
	return &domain.UpstreamError{Operation: operation, Err: err}
}
