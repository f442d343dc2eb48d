package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yumyai/protclass/internal/retry"
	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/db"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/render"
	"github.com/yumyai/protclass/pkg/sequence"
	"github.com/yumyai/protclass/pkg/uniprot"
	"go.uber.org/zap"
)

// APIResponse is the envelope for every JSON endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Payload: payload}); err != nil {
		logger.Error("Encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var seqErr *sequence.InvalidSequenceError
	var exhausted *retry.RetryExhaustedError
	var badReq *badRequestError

	switch {
	case errors.As(err, &seqErr), errors.As(err, &badReq),
		errors.Is(err, model.ErrNoInput), errors.Is(err, uniprot.ErrInvalidAccession):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrResultNotFound), errors.Is(err, uniprot.ErrNotFound),
		errors.Is(err, errJobNotFound), errors.Is(err, render.ErrNoEmbedding):
		return http.StatusNotFound
	case errors.As(err, &exhausted), errors.Is(err, uniprot.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg} }
