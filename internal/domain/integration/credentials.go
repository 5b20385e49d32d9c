package integration

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PasswordSpecialChars is the set of characters that satisfy the
// special-character rule of the password policy.
const PasswordSpecialChars = "!@#$%^&*"

// PasswordMinLength is the minimum accepted password length.
const PasswordMinLength = 8

var (
	ErrPasswordTooShort       = errors.New("integration: password must be at least 8 characters")
	ErrPasswordMissingLower   = errors.New("integration: password must contain a lowercase letter")
	ErrPasswordMissingUpper   = errors.New("integration: password must contain an uppercase letter")
	ErrPasswordMissingDigit   = errors.New("integration: password must contain a digit")
	ErrPasswordMissingSpecial = errors.New("integration: password must contain one of " + PasswordSpecialChars)
	ErrSettingsNotFound       = errors.New("integration: settings not found")
)

// Credentials are the Salesforce connected-app credentials of a tenant.
type Credentials struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	URL          string `json:"url"`
}

// IsZero reports whether nothing has been entered yet.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

// Redacted hides the secret fields.
func (c Credentials) Redacted() Credentials {
	out := c
	if out.Password != "" {
		out.Password = "********"
	}
	if out.ClientSecret != "" {
		out.ClientSecret = "********"
	}
	return out
}

// InstanceURL returns URL without a trailing slash.
func (c Credentials) InstanceURL() string {
	return strings.TrimRight(strings.TrimSpace(c.URL), "/")
}

// CheckPassword applies the password policy and returns the first violation.
func CheckPassword(p string) error {
	if utf8.RuneCountInString(p) < PasswordMinLength {
		return ErrPasswordTooShort
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}
	switch {
	case !lower:
		return ErrPasswordMissingLower
	case !upper:
		return ErrPasswordMissingUpper
	case !digit:
		return ErrPasswordMissingDigit
	case !special:
		return ErrPasswordMissingSpecial
	}
	return nil
}

// Settings holds the stored credentials of a tenant.
type Settings struct {
	shared.TenantEntity
	Credentials Credentials
}

// NewSettings creates settings for a tenant
func NewSettings(tenantID uuid.UUID, creds Credentials) (*Settings, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMappingInvalidTenantID
	}
	return &Settings{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Credentials:  creds,
	}, nil
}

// SettingsRepository persists settings, one row per tenant.
type SettingsRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
