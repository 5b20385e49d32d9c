package middleware

import (
	"errors"
	"reflect"
	"strings"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures gin's validator: JSON field names in errors and
// the integration rules.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("middleware: unexpected validator engine")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return appintegration.RegisterValidations(v)
}

// ValidationFields turns validator errors into per-field messages. Other
// errors yield nil.
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = validationMessage(e)
	}
	return fields
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case appintegration.PasswordTag:
		value, _ := e.Value().(string)
		if msg := appintegration.PasswordViolation(value); msg != "" {
			return msg
		}
		return "Password does not meet the policy"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "url":
		return "Invalid URL format"
	case "oneof":
		return "Must be one of: " + e.Param()
	default:
		return "Invalid value"
	}
}
