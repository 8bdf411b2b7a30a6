package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationProblems returns field -> message, or nil when req is valid.
func validationProblems(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"request": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "required"
		case "email":
			out[fe.Field()] = "must be a valid email address"
		case "min":
			out[fe.Field()] = fmt.Sprintf("must be at least %s characters", fe.Param())
		case "max":
			out[fe.Field()] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			out[fe.Field()] = "invalid"
		}
	}
	return out
}
