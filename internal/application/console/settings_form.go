package console

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SettingsSavedMessage is shown after credentials are stored.
const SettingsSavedMessage = "Integration settings saved"

// Form field names, as used in FieldErrors.
const (
	FieldUsername     = "username"
	FieldPassword     = "password"
	FieldClientID     = "client_id"
	FieldClientSecret = "client_secret"
	FieldURL          = "url"
)

// SettingsFields lists the form fields in display order.
var SettingsFields = []string{FieldUsername, FieldPassword, FieldClientID, FieldClientSecret, FieldURL}

// SettingsValues is the editable content of the credentials form.
type SettingsValues struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required,crm_password"`
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	URL          string `json:"url" validate:"required"`
}

// Get returns the value of a field by name
func (v SettingsValues) Get(field string) string {
	switch field {
	case FieldUsername:
		return v.Username
	case FieldPassword:
		return v.Password
	case FieldClientID:
		return v.ClientID
	case FieldClientSecret:
		return v.ClientSecret
	case FieldURL:
		return v.URL
	}
	return ""
}

// With returns a copy with one field changed
func (v SettingsValues) With(field, value string) SettingsValues {
	switch field {
	case FieldUsername:
		v.Username = value
	case FieldPassword:
		v.Password = value
	case FieldClientID:
		v.ClientID = value
	case FieldClientSecret:
		v.ClientSecret = value
	case FieldURL:
		v.URL = value
	}
	return v
}

func (v SettingsValues) credentials() integration.Credentials {
	return integration.Credentials{
		Username:     v.Username,
		Password:     v.Password,
		ClientID:     v.ClientID,
		ClientSecret: v.ClientSecret,
		URL:          v.URL,
	}
}

func valuesFrom(c integration.Credentials) SettingsValues {
	return SettingsValues{
		Username:     c.Username,
		Password:     c.Password,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		URL:          c.URL,
	}
}

// FieldErrors maps a field name to its inline message.
type FieldErrors map[string]string

// SettingsForm validates and submits integration credentials.
type SettingsForm struct {
	gateway  Gateway
	notifier Notifier
	validate *validator.Validate
	logger   *zap.Logger

	mu      sync.Mutex
	values  SettingsValues
	errs    FieldErrors
	loading bool
}

// NewSettingsForm creates a form pre-populated from the store's settings.
func NewSettingsForm(gateway Gateway, store *Store, notifier Notifier, logger *zap.Logger) *SettingsForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &SettingsForm{
		gateway:  gateway,
		notifier: notifier,
		validate: newValidator(),
		logger:   logger,
		values:   valuesFrom(store.State().Settings),
		errs:     FieldErrors{},
	}
}

// Values returns the current form content
func (f *SettingsForm) Values() SettingsValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Set changes one field
func (f *SettingsForm) Set(field, value string) {
	f.mu.Lock()
	f.values = f.values.With(field, value)
	f.mu.Unlock()
}

// Errors returns the messages from the last validation
func (f *SettingsForm) Errors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(FieldErrors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Loading reports whether a submit is in flight
func (f *SettingsForm) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Validate checks the current values and records per-field messages.
func (f *SettingsForm) Validate() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = validateValues(f.validate, f.values)
	return f.errs
}

// Submit validates and, when valid, saves the credentials. It reports whether
// the save succeeded. Remote failures are logged only.
func (f *SettingsForm) Submit(ctx context.Context) bool {
	f.mu.Lock()
	f.errs = validateValues(f.validate, f.values)
	if len(f.errs) > 0 {
		f.mu.Unlock()
		return false
	}
	f.loading = true
	creds := f.values.credentials()
	f.mu.Unlock()

	_, err := f.gateway.SaveSettings(ctx, creds).Unwrap()

	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("Saving integration settings failed", zap.Error(err))
		return false
	}
	f.notifier.Success(SettingsSavedMessage)
	return true
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = appintegration.RegisterValidations(v)
	return v
}

func validateValues(v *validator.Validate, values SettingsValues) FieldErrors {
	errs := FieldErrors{}
	err := v.Struct(values)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = fieldMessage(fe, values)
	}
	return errs
}

func fieldMessage(fe validator.FieldError, values SettingsValues) string {
	switch fe.Tag() {
	case "required":
		return strings.ReplaceAll(fe.Field(), "_", " ") + " is required"
	case appintegration.PasswordTag:
		return appintegration.PasswordViolation(values.Password)
	}
	return fe.Field() + " is invalid"
}
