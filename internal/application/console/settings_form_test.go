package console

import (
	"context"
	"testing"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func fillValid(f *SettingsForm) {
	f.Set(FieldUsername, "ops@example.com")
	f.Set(FieldPassword, "Abc123!@")
	f.Set(FieldClientID, "cid")
	f.Set(FieldClientSecret, "secret")
	f.Set(FieldURL, "https://example.my.salesforce.com")
}

func TestSettingsForm_Validate(t *testing.T) {
	f := NewSettingsForm(new(MockGateway), NewStore(), nil, nil)

	errs := f.Validate()
	assert.Len(t, errs, 5)
	assert.Equal(t, "client id is required", errs[FieldClientID])

	fillValid(f)
	assert.Empty(t, f.Validate())

	f.Set(FieldPassword, "abc12345")
	errs = f.Validate()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[FieldPassword], "uppercase")

	f.Set(FieldPassword, "Abc12345")
	assert.Contains(t, f.Validate()[FieldPassword], "!@#$%^&*")

	f.Set(FieldPassword, "Ab1!")
	assert.Contains(t, f.Validate()[FieldPassword], "at least 8")
}

func TestSettingsForm_PrePopulated(t *testing.T) {
	store := NewStore()
	store.SetSettings(integration.Credentials{Username: "stored", URL: "https://x"})

	f := NewSettingsForm(new(MockGateway), store, nil, nil)
	assert.Equal(t, "stored", f.Values().Username)
	assert.Equal(t, "https://x", f.Values().Get(FieldURL))
}

func TestSettingsForm_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid form is not sent", func(t *testing.T) {
		gw := new(MockGateway)
		f := NewSettingsForm(gw, NewStore(), nil, nil)
		assert.False(t, f.Submit(ctx))
		assert.NotEmpty(t, f.Errors())
		gw.AssertNotCalled(t, "SaveSettings", mock.Anything, mock.Anything)
	})

	t.Run("Success shows toast", func(t *testing.T) {
		gw := new(MockGateway)
		var toasts []string
		f := NewSettingsForm(gw, NewStore(), NotifierFunc(func(m string) { toasts = append(toasts, m) }), nil)
		fillValid(f)

		gw.On("SaveSettings", ctx, mock.MatchedBy(func(c integration.Credentials) bool {
			return c.Username == "ops@example.com" && c.ClientSecret == "secret"
		})).Return(shared.Ok(struct{}{}))

		assert.True(t, f.Submit(ctx))
		assert.Equal(t, []string{SettingsSavedMessage}, toasts)
		assert.False(t, f.Loading())
	})

	t.Run("Failure is silent", func(t *testing.T) {
		gw := new(MockGateway)
		var toasts []string
		f := NewSettingsForm(gw, NewStore(), NotifierFunc(func(m string) { toasts = append(toasts, m) }), nil)
		fillValid(f)
		gw.On("SaveSettings", ctx, mock.Anything).Return(shared.Fail[struct{}](errFailure))

		assert.False(t, f.Submit(ctx))
		assert.Empty(t, toasts)
		assert.Empty(t, f.Errors())
		assert.False(t, f.Loading())
	})
}
