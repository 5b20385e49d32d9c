package console

import (
	"context"
	"testing"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loadedScreen(t *testing.T, rt integration.RecordType, gw *MockGateway, store *Store, catalog integration.FieldCatalog) *Screen {
	t.Helper()
	gw.On("GetMappingCatalog", mock.Anything, rt.SObjectName(), rt.InternalModelName()).
		Return(shared.Ok(catalog)).Once()
	s := NewScreen(rt, gw, store, nil)
	t.Cleanup(s.Close)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestScreen_Load(t *testing.T) {
	gw := new(MockGateway)
	store := NewStore()
	store.SetMappings([]integration.Mapping{
		savedMapping(integration.RecordTypeAccount,
			[]integration.Association{{Destination: "contact_email", Source: "Email"}}, nil, nil),
	})

	s := loadedScreen(t, integration.RecordTypeAccount, gw, store, contactCatalog())
	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Email", rows[0].Source)
	assert.True(t, rows[1].IsPlaceholder())
	assert.NotEqual(t, uuid.Nil, s.MappingID())
	assert.False(t, s.Loading())
	assert.True(t, s.Loaded())
}

func TestScreen_LoadFailure(t *testing.T) {
	gw := new(MockGateway)
	gw.On("GetMappingCatalog", mock.Anything, "Quote", "quote").
		Return(shared.Fail[integration.FieldCatalog](errFailure))

	s := NewScreen(integration.RecordTypeQuote, gw, NewStore(), nil)
	defer s.Close()
	err := s.Load(context.Background())
	assert.ErrorIs(t, err, errFailure)
	assert.False(t, s.Loading())
	assert.False(t, s.Loaded())
	assert.Empty(t, s.Rows())
}

func TestScreen_LoadUserFetchesRoles(t *testing.T) {
	gw := new(MockGateway)
	roles := []integration.Role{{ID: "r1", Name: "Admin"}}
	gw.On("GetRoleCatalog", mock.Anything).Return(shared.Ok(roles))

	store := NewStore()
	store.SetMappings([]integration.Mapping{
		savedMapping(integration.RecordTypeUser, nil, nil, integration.UserConfig{RoleIDs: []string{"r1"}}),
	})
	s := loadedScreen(t, integration.RecordTypeUser, gw, store, integration.FieldCatalog{})

	assert.Equal(t, roles, s.RoleCatalog())
	assert.Equal(t, roles, s.Extras().Roles)
	gw.AssertExpectations(t)
}

func TestScreen_UpdateRowAndOptions(t *testing.T) {
	gw := new(MockGateway)
	s := loadedScreen(t, integration.RecordTypeAccount, gw, NewStore(), contactCatalog())

	rows := s.Rows()
	require.Len(t, rows, 2)
	first := rows[0]
	first.Source = "Email"
	require.True(t, s.UpdateRow(first.ID, first))

	assert.Equal(t, []string{"Phone"}, s.AvailableOptions(rows[1].ID, KeySource))
	assert.Equal(t, []string{"Email", "Phone"}, s.AvailableOptions(first.ID, KeySource))
	assert.Equal(t, "Email", s.Rows()[0].Source)
}

func TestScreen_SaveCreatesWhenUnsaved(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	store := NewStore()
	s := loadedScreen(t, integration.RecordTypeAccount, gw, store, contactCatalog())

	row := s.Rows()[0]
	row.Source, row.Target, row.Inbound = "Email", "contact_email", true
	s.UpdateRow(row.ID, row)

	gw.On("CreateMapping", ctx, mock.MatchedBy(func(m integration.Mapping) bool {
		return m.ID == uuid.Nil && len(m.Inbound) == 1 && len(m.Outbound) == 0
	})).Return(shared.Ok(integration.Mapping{}))

	assert.True(t, s.Save(ctx))
	assert.True(t, store.State().RefetchRequested)
	assert.False(t, s.Loading())
	gw.AssertNotCalled(t, "UpdateMapping", mock.Anything, mock.Anything, mock.Anything)
}

func TestScreen_SaveUpdatesWhenSaved(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	store := NewStore()
	saved := savedMapping(integration.RecordTypeOpportunity, nil, nil, nil)
	store.SetMappings([]integration.Mapping{saved})
	s := loadedScreen(t, integration.RecordTypeOpportunity, gw, store, integration.FieldCatalog{})

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetCutoffDate(&cutoff)

	gw.On("UpdateMapping", ctx, saved.ID, mock.MatchedBy(func(m integration.Mapping) bool {
		cfg, ok := m.Config.(integration.OpportunityConfig)
		return ok && cfg.CutoffDate.Equal(cutoff)
	})).Return(shared.Ok(integration.Mapping{}))

	assert.True(t, s.Save(ctx))
	gw.AssertExpectations(t)
}

func TestScreen_SaveFailureIsSilent(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	store := NewStore()
	s := loadedScreen(t, integration.RecordTypeAccount, gw, store, contactCatalog())

	row := s.Rows()[0]
	row.Source, row.Target, row.Outbound = "Phone", "contact_email", true
	s.UpdateRow(row.ID, row)
	before := s.Rows()

	gw.On("CreateMapping", ctx, mock.Anything).Return(shared.Fail[integration.Mapping](errFailure))

	assert.False(t, s.Save(ctx))
	assert.False(t, s.Loading())
	assert.Equal(t, before, s.Rows())
	assert.False(t, store.State().RefetchRequested)
}

func TestScreen_RederivesOnMappingChange(t *testing.T) {
	gw := new(MockGateway)
	store := NewStore()
	s := loadedScreen(t, integration.RecordTypeAccount, gw, store, contactCatalog())

	changed := 0
	s.OnChange(func() { changed++ })

	row := s.Rows()[0]
	row.Source = "Email"
	s.UpdateRow(row.ID, row)

	store.SetMappings([]integration.Mapping{
		savedMapping(integration.RecordTypeAccount, nil,
			[]integration.Association{{Destination: "Phone", Source: "contact_email"}}, nil),
	})

	rows := s.Rows()
	assert.Equal(t, 1, changed)
	assert.Equal(t, "Phone", rows[0].Source, "local edits are discarded")
	assert.True(t, rows[0].Outbound)

	store.RequestRefetch()
	assert.Equal(t, 1, changed, "non-mapping updates do not re-derive")
}

func TestScreen_IgnoresOlderSnapshot(t *testing.T) {
	gw := new(MockGateway)
	store := NewStore()
	s := loadedScreen(t, integration.RecordTypeAccount, gw, store, contactCatalog())

	store.SetMappings([]integration.Mapping{
		savedMapping(integration.RecordTypeAccount,
			[]integration.Association{{Destination: "contact_email", Source: "Email"}}, nil, nil),
	})
	older := store.State()

	newer := savedMapping(integration.RecordTypeAccount,
		[]integration.Association{{Destination: "contact_email", Source: "Phone"}}, nil, nil)
	store.SetMappings([]integration.Mapping{newer})

	s.derive(older, true)
	s.derive(older, false)

	assert.Equal(t, newer.ID, s.MappingID())
	assert.Equal(t, "Phone", s.Rows()[0].Source)
}

func TestScreen_CutoffDateIsCopied(t *testing.T) {
	gw := new(MockGateway)
	s := loadedScreen(t, integration.RecordTypeOpportunity, gw, NewStore(), contactCatalog())

	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.SetCutoffDate(&cutoff)
	cutoff = cutoff.AddDate(1, 0, 0)

	got := s.Extras().CutoffDate
	require.NotNil(t, got)
	assert.Equal(t, 2024, got.Year())

	*got = got.AddDate(5, 0, 0)
	assert.Equal(t, 2024, s.Extras().CutoffDate.Year())
}
