package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator builds the request validator. Error messages use the JSON
// field names, not the Go struct names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// validationMessage flattens validator output to a single user-facing line.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "invalid request"
	}

	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "email":
			parts = append(parts, fe.Field()+" must be a valid email")
		case "oneof":
			parts = append(parts, fe.Field()+" must be one of: "+fe.Param())
		case "min":
			parts = append(parts, fe.Field()+" is too short")
		case "gte":
			parts = append(parts, fe.Field()+" must be non-negative")
		case "datetime":
			parts = append(parts, fe.Field()+" must be a date in YYYY-MM-DD format")
		case "uuid4", "uuid":
			parts = append(parts, fe.Field()+" must be a valid uuid")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
