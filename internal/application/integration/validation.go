package integration

import (
	"strings"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/go-playground/validator/v10"
)

// PasswordTag is the validator tag enforcing the CRM password policy.
const PasswordTag = "crm_password"

// RegisterValidations adds the integration rules to a validator instance.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(PasswordTag, func(fl validator.FieldLevel) bool {
		return integration.CheckPassword(fl.Field().String()) == nil
	})
}

// PasswordViolation describes why a password fails the policy, or "" if it passes.
func PasswordViolation(p string) string {
	err := integration.CheckPassword(p)
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "integration: ")
}
