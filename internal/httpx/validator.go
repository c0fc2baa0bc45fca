package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"shelfapi/internal/isbn"
	"shelfapi/internal/platform/crypto"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("isbn", validateISBN)
	_ = validate.RegisterValidation("password_strength", validatePasswordStrength)
}

// validateISBN accepts anything an ISBN can be extracted from, including
// scanner output with a price add-on.
func validateISBN(fl validator.FieldLevel) bool {
	_, err := isbn.Extract(fl.Field().String())
	return err == nil
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return crypto.ValidatePasswordStrength(fl.Field().String()) == nil
}

// ValidateStruct runs struct-tag validation and returns one detail per failed field.
func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			if fe.Kind() == reflect.Slice {
				message = fmt.Sprintf("%s must contain at least %s items", field, param)
			} else {
				message = fmt.Sprintf("%s must be at least %s characters", field, param)
			}
		case "max":
			if fe.Kind() == reflect.Slice {
				message = fmt.Sprintf("%s must contain at most %s items", field, param)
			} else {
				message = fmt.Sprintf("%s must be at most %s characters", field, param)
			}
		case "isbn":
			message = fmt.Sprintf("%s must be a valid ISBN", field)
		case "password_strength":
			message = fmt.Sprintf("%s must be at least 8 characters with uppercase, lowercase, number, and special character", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   fieldPath(fe.Namespace()),
			Message: message,
		})
	}

	return details
}

// fieldPath drops the struct name from a validator namespace ("addReq.isbns[0]" -> "isbns[0]").
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
