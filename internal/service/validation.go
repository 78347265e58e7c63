package service

import (
	"errors"
	"fmt"
	"strings"

	"alcyxob/studio-calendar/internal/schedule"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// clock accepts "hh:mm AM/PM" or "HH:MM".
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return schedule.To24h(fl.Field().String()) != ""
	})
	return v
}

// Validator exposes the shared validator so the HTTP layer can bind with
// the same rules.
func Validator() *validator.Validate {
	return validate
}

// checkStruct runs the validator and folds field errors into one
// ErrValidation.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return validationErr("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return validationErr("%s", strings.Join(msgs, "; "))
}
