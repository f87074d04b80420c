package entity

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const botPlayerID = "ai"

var (
	nameCharset   = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
	nameValidator = newNameValidator()
)

type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	JoinOrder   int    `json:"join_order"`
	IsSynthetic bool   `json:"is_synthetic,omitempty"`
}

func NewBotPlayer(difficulty Difficulty) *Player {
	return &Player{
		ID:          botPlayerID,
		Name:        "AI " + string(difficulty),
		IsSynthetic: true,
	}
}

func (that *Player) IsBot() bool {
	return that.IsSynthetic
}

func newNameValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
		return nameCharset.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return validate
}

// NormalizeName trims the display name and checks its length and charset.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if err := nameValidator.Var(name, "required,min=2,max=15,playername"); err != nil {
		return "", apperror.ErrInvalidName
	}

	return name, nil
}
