package console

import (
	"context"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

var _ Gateway = (*MockGateway)(nil)

func (m *MockGateway) GetSettings(ctx context.Context) shared.Result[integration.Credentials] {
	return m.Called(ctx).Get(0).(shared.Result[integration.Credentials])
}

func (m *MockGateway) SaveSettings(ctx context.Context, creds integration.Credentials) shared.Result[struct{}] {
	return m.Called(ctx, creds).Get(0).(shared.Result[struct{}])
}

func (m *MockGateway) GetMappingCatalog(ctx context.Context, sobjectName, internalModelName string) shared.Result[integration.FieldCatalog] {
	return m.Called(ctx, sobjectName, internalModelName).Get(0).(shared.Result[integration.FieldCatalog])
}

func (m *MockGateway) GetMappingList(ctx context.Context) shared.Result[[]integration.Mapping] {
	return m.Called(ctx).Get(0).(shared.Result[[]integration.Mapping])
}

func (m *MockGateway) CreateMapping(ctx context.Context, mapping integration.Mapping) shared.Result[integration.Mapping] {
	return m.Called(ctx, mapping).Get(0).(shared.Result[integration.Mapping])
}

func (m *MockGateway) UpdateMapping(ctx context.Context, id uuid.UUID, mapping integration.Mapping) shared.Result[integration.Mapping] {
	return m.Called(ctx, id, mapping).Get(0).(shared.Result[integration.Mapping])
}

func (m *MockGateway) GetRoleCatalog(ctx context.Context) shared.Result[[]integration.Role] {
	return m.Called(ctx).Get(0).(shared.Result[[]integration.Role])
}

func savedMapping(rt integration.RecordType, inbound, outbound []integration.Association, cfg integration.MappingConfig) integration.Mapping {
	m := integration.Mapping{
		RecordType: rt,
		Inbound:    inbound,
		Outbound:   outbound,
		Config:     cfg,
	}
	m.ID = uuid.New()
	return m
}

var errFailure = shared.NewDomainError("UPSTREAM_FAILED", "failure")
