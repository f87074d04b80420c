package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeInternalError  = "INTERNAL_ERROR"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// requestError is a malformed request caught before it reaches the game.
type requestError struct {
	message string
}

func (that *requestError) Error() string {
	return that.message
}

func newInvalidRequestError(message string) error {
	return &requestError{message: message}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := toAPIError(err)
	writeJSON(w, status, errorResponse{Error: body})
}

func toAPIError(err error) (int, apiError) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, apiError{Code: codeInvalidRequest, Message: reqErr.message}
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, apiError{Code: codeInternalError, Message: "internal server error"}
	}

	return statusOf(appErr.Kind), apiError{Code: appErr.Code, Message: appErr.Message}
}

func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
