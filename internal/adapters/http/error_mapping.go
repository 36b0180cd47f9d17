package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrForbidden):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		slog.WarnContext(r.Context(), "upstream_error",
			"request_id", requestIDFromContext(r.Context()),
			"operation", upstream.Operation,
			"upstream_status", upstream.StatusCode,
			"error", err,
		)
		payload := map[string]any{
			"error":  "upstream error",
			"status": upstream.StatusCode,
			"detail": upstream.Body,
		}
		if upstream.Body == "" && upstream.Err != nil {
			payload["detail"] = upstream.Err.Error()
		}
		writeJSON(w, status, payload)
		return
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
