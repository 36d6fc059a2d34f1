package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalambet/aura/internal/completion"
)

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}

// completionError maps a failed reply to a status code and error type.
func completionError(w http.ResponseWriter, r *http.Request, err error) {
	code, errType, msg := classifyError(err)
	slog.Error("generating reply failed",
		"path", r.URL.Path,
		"status", code,
		"error", err,
	)
	httpError(w, code, errType, "%s", msg)
}

func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, completion.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "the assistant took too long to answer, please try again"
	case errors.Is(err, completion.ErrUnavailable):
		return http.StatusServiceUnavailable, "service_unavailable", "the assistant is unavailable right now, please try again later"
	case errors.Is(err, completion.ErrRefused):
		return http.StatusBadGateway, "content_refused", "the assistant could not answer this request"
	case errors.Is(err, completion.ErrEmpty):
		return http.StatusBadGateway, "empty_reply", "the assistant returned an empty answer, please try again"
	case errors.Is(err, completion.ErrRejected):
		return http.StatusBadGateway, "upstream_error", "the completion service rejected the request"
	default:
		return http.StatusInternalServerError, "api_error", "something went wrong while preparing your answer"
	}
}
