package console

import (
	"context"
	"testing"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestShell_Mount(t *testing.T) {
	ctx := context.Background()

	t.Run("Permitted user fetches settings", func(t *testing.T) {
		gw := new(MockGateway)
		store := NewStore()
		gw.On("GetSettings", ctx).Return(shared.Ok(integration.Credentials{Username: "u"}))
		gw.On("GetMappingList", ctx).Return(shared.Ok([]integration.Mapping{}))
		gw.On("GetMappingCatalog", ctx, "Account", "account").Return(shared.Ok(contactCatalog()))

		sh := NewShell(gw, store, ShellOptions{CanManageSettings: true})
		defer sh.Close()
		require.NoError(t, sh.Mount(ctx))

		assert.Len(t, sh.Screens(), 6)
		assert.Equal(t, integration.RecordTypeAccount, sh.Selected().RecordType())
		assert.Equal(t, "u", store.State().Settings.Username)
		assert.Len(t, sh.Selected().Rows(), 2)

		form, err := sh.SettingsForm()
		require.NoError(t, err)
		assert.Equal(t, "u", form.Values().Username)
	})

	t.Run("Without permission settings are skipped", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetMappingList", ctx).Return(shared.Ok([]integration.Mapping{}))
		gw.On("GetMappingCatalog", ctx, "Account", "account").Return(shared.Ok(contactCatalog()))

		sh := NewShell(gw, NewStore(), ShellOptions{})
		defer sh.Close()
		require.NoError(t, sh.Mount(ctx))

		gw.AssertNotCalled(t, "GetSettings", mock.Anything)
		_, err := sh.SettingsForm()
		assert.ErrorIs(t, err, ErrSettingsForbidden)
	})
}

func TestShell_Select(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("GetMappingList", ctx).Return(shared.Ok([]integration.Mapping{}))
	gw.On("GetMappingCatalog", ctx, "Account", "account").Return(shared.Ok(contactCatalog()))
	gw.On("GetMappingCatalog", ctx, "UserRole", "org_hierarchy").Return(shared.Ok(integration.FieldCatalog{})).Once()

	sh := NewShell(gw, NewStore(), ShellOptions{})
	defer sh.Close()
	require.NoError(t, sh.Mount(ctx))

	require.NoError(t, sh.Select(ctx, 5))
	assert.Equal(t, 5, sh.SelectedIndex())
	assert.Equal(t, integration.RecordTypeOrgHierarchy, sh.Selected().RecordType())

	require.NoError(t, sh.Select(ctx, 5), "second visit does not refetch the catalog")
	assert.Error(t, sh.Select(ctx, 6))

	sc, ok := sh.Screen(integration.RecordTypeQuote)
	require.True(t, ok)
	assert.False(t, sc.Loaded())
}

func TestShell_SaveTriggersRefetchForAllScreens(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	store := NewStore()

	gw.On("GetMappingList", ctx).Return(shared.Ok([]integration.Mapping{})).Once()
	gw.On("GetMappingCatalog", ctx, "Account", "account").Return(shared.Ok(contactCatalog()))
	gw.On("GetMappingCatalog", ctx, "Contract", "contract").Return(shared.Ok(integration.FieldCatalog{SourceFields: []string{"Status"}}))

	sh := NewShell(gw, store, ShellOptions{})
	defer sh.Close()
	require.NoError(t, sh.Mount(ctx))
	require.NoError(t, sh.Select(ctx, 1))

	account, _ := sh.Screen(integration.RecordTypeAccount)
	row := account.Rows()[0]
	row.Source, row.Target, row.Inbound = "Email", "contact_email", true
	account.UpdateRow(row.ID, row)

	persisted := Serialize(integration.RecordTypeAccount, uuid.New(), account.Rows(), Extras{})
	contract := savedMapping(integration.RecordTypeContract,
		[]integration.Association{{Destination: "status", Source: "Status"}}, nil, nil)

	gw.On("CreateMapping", ctx, mock.Anything).Return(shared.Ok(persisted))
	gw.On("GetMappingList", ctx).Return(shared.Ok([]integration.Mapping{persisted, contract})).Once()

	require.True(t, account.Save(ctx))

	assert.False(t, store.State().RefetchRequested, "refetch signal consumed")
	assert.Equal(t, persisted.ID, account.MappingID())

	other, _ := sh.Screen(integration.RecordTypeContract)
	assert.Equal(t, contract.ID, other.MappingID())
	assert.Equal(t, "Status", other.Rows()[0].Source)
	gw.AssertNumberOfCalls(t, "GetMappingList", 2)
}
