package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const maxBodyBytes = 1 << 16

var requestValidator = newRequestValidator()

type createSessionRequest struct {
	AI *aiRequest `json:"ai"`
}

type aiRequest struct {
	Difficulty string `json:"difficulty" validate:"required"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	Position *int   `json:"position" validate:"required"`
}

type playerRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type JoinResponse struct {
	PlayerID string           `json:"player_id"`
	Symbol   string           `json:"symbol"`
	State    *entity.Snapshot `json:"state"`
}

type RematchResponse struct {
	Started    bool             `json:"started"`
	WaitingFor int              `json:"waiting_for"`
	State      *entity.Snapshot `json:"state"`
}

type EnqueueResponse struct {
	PlayerID string `json:"player_id"`
}

// newRequestValidator reports fields by their JSON names.
func newRequestValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return validate
}

// decodeBody reads a JSON body into dst and validates it. An empty body is
// accepted only when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, io.EOF):
		return newInvalidRequestError("request body is required")
	case err != nil:
		return newInvalidRequestError("malformed JSON body")
	}

	if err = requestValidator.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return newInvalidRequestError(fieldErrs[0].Field() + " is " + fieldErrs[0].Tag())
		}

		return newInvalidRequestError("invalid request body")
	}

	return nil
}
