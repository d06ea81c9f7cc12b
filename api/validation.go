package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type chatRequest struct {
	Query string `json:"query" validate:"required"`
}

type titleSearchRequest struct {
	Title string `validate:"required"`
	Limit int    `validate:"gte=1,lte=100"`
}

// validateStruct returns a readable error naming every invalid field.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldErr.Field()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be greater than or equal to %s", fieldErr.Field(), fieldErr.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be less than or equal to %s", fieldErr.Field(), fieldErr.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s validation failed on '%s' tag", fieldErr.Field(), fieldErr.Tag()))
		}
	}

	return errors.New(strings.Join(messages, "; "))
}
