package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"buildboard/internal/service"
)

// apiError is a failure with an explicit HTTP status.
type apiError struct {
	status int
	code   string
	msg    string
	err    error
}

func (e *apiError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *apiError) Unwrap() error {
	return e.err
}

func errBadRequest(msg string, err error) error {
	return &apiError{status: http.StatusBadRequest, code: "invalid_argument", msg: msg, err: err}
}

func errNotFound(msg string) error {
	return &apiError{status: http.StatusNotFound, code: "not_found", msg: msg}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handlerFunc returns the response body or an error.
type handlerFunc func(r *http.Request) (status int, body any, err error)

func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body, err := h(r)
		if err != nil {
			writeError(r.Context(), w, s.logger, err)
			return
		}
		writeJSON(r.Context(), w, s.logger, status, body)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WarnContext(ctx, "failed to write response", "error", err)
	}
}

// writeError maps err to a status: store failures are a bad gateway, a
// missing task is not found.
func writeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	status, body := http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal error"}

	var ae *apiError
	var se *service.Error
	switch {
	case errors.As(err, &ae):
		status, body = ae.status, errorBody{Code: ae.code, Message: ae.msg}
	case errors.As(err, &se):
		switch se.Kind {
		case service.KindNotFound:
			status, body = http.StatusNotFound, errorBody{Code: "not_found", Message: se.Msg}
		default:
			status, body = http.StatusBadGateway, errorBody{Code: "store_" + kindCode(se.Kind), Message: se.Msg}
		}
	case errors.Is(err, context.Canceled):
		status, body = 499, errorBody{Code: "canceled", Message: "connection closed"}
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "error", err)
	}
	writeJSON(ctx, w, logger, status, body)
}

func kindCode(k service.Kind) string {
	switch k {
	case service.KindTransport:
		return "unreachable"
	case service.KindDecode:
		return "bad_response"
	default:
		return "error"
	}
}
