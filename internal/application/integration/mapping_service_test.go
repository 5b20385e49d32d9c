package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestMapping(t *testing.T, tenantID uuid.UUID, rt integration.RecordType) *integration.Mapping {
	t.Helper()
	m, err := integration.NewMapping(tenantID, rt,
		[]integration.Association{{Source: "Name", Destination: "name"}},
		[]integration.Association{{Source: "name", Destination: "Name"}},
		nil)
	require.NoError(t, err)
	return m
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestMappingService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockMappingRepository)
	svc := NewMappingService(repo, nil)

	m := newTestMapping(t, tenantID, integration.RecordTypeAccount)
	repo.On("List", ctx, tenantID).Return([]integration.Mapping{*m}, nil)

	got, err := svc.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, m.ID, got[0].ID)
	assert.Equal(t, integration.RecordTypeAccount, got[0].RecordType)
	assert.Equal(t, []AssociationDTO{{Source: "Name", Destination: "name"}}, got[0].Inbound)
	repo.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestMappingService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Creates and publishes", func(t *testing.T) {
		repo := new(MockMappingRepository)
		notifier := new(MockChangeNotifier)
		svc := NewMappingService(repo, nil, WithChangeNotifier(notifier))

		repo.On("FindByRecordType", ctx, tenantID, integration.RecordTypeUser).Return(nil, integration.ErrMappingNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*integration.Mapping")).Return(nil)
		notifier.On("Publish", ctx, mock.MatchedBy(func(c MappingChange) bool {
			return c.TenantID == tenantID && c.RecordType == integration.RecordTypeUser && c.Operation == OperationCreate
		})).Return(nil)

		resp, err := svc.Create(ctx, tenantID, MappingRequest{
			RecordType: "USER",
			Inbound:    []AssociationDTO{{Source: "Email", Destination: "email"}},
			Config:     json.RawMessage(`{"role_ids":["r1"]}`),
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.JSONEq(t, `{"role_ids":["r1"]}`, string(resp.Config))
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Rejects duplicate record type", func(t *testing.T) {
		repo := new(MockMappingRepository)
		svc := NewMappingService(repo, nil)
		repo.On("FindByRecordType", ctx, tenantID, integration.RecordTypeAccount).
			Return(newTestMapping(t, tenantID, integration.RecordTypeAccount), nil)

		_, err := svc.Create(ctx, tenantID, MappingRequest{RecordType: "ACCOUNT"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rejects unknown record type", func(t *testing.T) {
		svc := NewMappingService(new(MockMappingRepository), nil)
		_, err := svc.Create(ctx, tenantID, MappingRequest{RecordType: "LEAD"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("Rejects incomplete association", func(t *testing.T) {
		repo := new(MockMappingRepository)
		svc := NewMappingService(repo, nil)
		repo.On("FindByRecordType", ctx, tenantID, integration.RecordTypeQuote).Return(nil, integration.ErrMappingNotFound)

		_, err := svc.Create(ctx, tenantID, MappingRequest{
			RecordType: "QUOTE",
			Outbound:   []AssociationDTO{{Source: "name"}},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("Publish failure does not fail the save", func(t *testing.T) {
		repo := new(MockMappingRepository)
		notifier := new(MockChangeNotifier)
		svc := NewMappingService(repo, nil, WithChangeNotifier(notifier))

		repo.On("FindByRecordType", ctx, tenantID, integration.RecordTypeContract).Return(nil, integration.ErrMappingNotFound)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		notifier.On("Publish", ctx, mock.Anything).Return(errors.New("redis down"))

		_, err := svc.Create(ctx, tenantID, MappingRequest{RecordType: "CONTRACT"})
		assert.NoError(t, err)
	})
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestMappingService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Replaces associations", func(t *testing.T) {
		repo := new(MockMappingRepository)
		svc := NewMappingService(repo, nil)
		existing := newTestMapping(t, tenantID, integration.RecordTypeOpportunity)

		repo.On("FindByID", ctx, tenantID, existing.ID).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		resp, err := svc.Update(ctx, tenantID, existing.ID, MappingRequest{
			RecordType: "OPPORTUNITY",
			Inbound:    []AssociationDTO{{Source: "Amount", Destination: "amount"}},
			Config:     json.RawMessage(`{"cutoff_date":"2024-01-31"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resp.ID)
		assert.Len(t, resp.Inbound, 1)
		assert.Empty(t, resp.Outbound)
		assert.JSONEq(t, `{"cutoff_date":"2024-01-31"}`, string(resp.Config))
		repo.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockMappingRepository)
		svc := NewMappingService(repo, nil)
		id := uuid.New()
		repo.On("FindByID", ctx, tenantID, id).Return(nil, integration.ErrMappingNotFound)

		_, err := svc.Update(ctx, tenantID, id, MappingRequest{RecordType: "ACCOUNT"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Record type cannot change", func(t *testing.T) {
		repo := new(MockMappingRepository)
		svc := NewMappingService(repo, nil)
		existing := newTestMapping(t, tenantID, integration.RecordTypeAccount)
		repo.On("FindByID", ctx, tenantID, existing.ID).Return(existing, nil)

		_, err := svc.Update(ctx, tenantID, existing.ID, MappingRequest{RecordType: "QUOTE"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("Repository failure is returned", func(t *testing.T) {
		repo := new(MockMappingRepository)
		svc := NewMappingService(repo, nil)
		existing := newTestMapping(t, tenantID, integration.RecordTypeAccount)
		repo.On("FindByID", ctx, tenantID, existing.ID).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(errors.New("db down"))

		_, err := svc.Update(ctx, tenantID, existing.ID, MappingRequest{RecordType: "ACCOUNT"})
		assert.EqualError(t, err, "db down")
	})
}
