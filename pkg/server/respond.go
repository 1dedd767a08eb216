package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/roadnet/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Stage   string      `json:"stage,omitempty"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	switch {
	case code != "":
	case stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case stderrors.Is(err, context.Canceled):
		code = errors.ErrCodeTimeout
	default:
		code = errors.ErrCodeInternal
	}

	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError && code == errors.ErrCodeInternal {
		s.opts.Logger.Error("internal error", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Stage:   errors.GetStage(err),
		Message: msg,
	}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidBounds:
		return http.StatusBadRequest
	case errors.ErrCodeConsistency:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
