package integration

import (
	"context"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMappingRepository is a mock implementation of MappingRepository
type MockMappingRepository struct {
	mock.Mock
}

var _ integration.MappingRepository = (*MockMappingRepository)(nil)

func (m *MockMappingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*integration.Mapping, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Mapping), args.Error(1)
}

func (m *MockMappingRepository) FindByRecordType(ctx context.Context, tenantID uuid.UUID, rt integration.RecordType) (*integration.Mapping, error) {
	args := m.Called(ctx, tenantID, rt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Mapping), args.Error(1)
}

func (m *MockMappingRepository) List(ctx context.Context, tenantID uuid.UUID) ([]integration.Mapping, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Mapping), args.Error(1)
}

func (m *MockMappingRepository) Create(ctx context.Context, mapping *integration.Mapping) error {
	return m.Called(ctx, mapping).Error(0)
}

func (m *MockMappingRepository) Update(ctx context.Context, mapping *integration.Mapping) error {
	return m.Called(ctx, mapping).Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

var _ integration.SettingsRepository = (*MockSettingsRepository)(nil)

func (m *MockSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*integration.Settings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *integration.Settings) error {
	return m.Called(ctx, s).Error(0)
}

// MockChangeNotifier is a mock implementation of ChangeNotifier
type MockChangeNotifier struct {
	mock.Mock
}

var _ ChangeNotifier = (*MockChangeNotifier)(nil)

func (m *MockChangeNotifier) Publish(ctx context.Context, change MappingChange) error {
	return m.Called(ctx, change).Error(0)
}

// MockCatalogProvider is a mock implementation of CatalogProvider
type MockCatalogProvider struct {
	mock.Mock
}

var _ integration.CatalogProvider = (*MockCatalogProvider)(nil)

func (m *MockCatalogProvider) DescribeFields(ctx context.Context, creds integration.Credentials, sobjectName string) ([]string, error) {
	args := m.Called(ctx, creds, sobjectName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockRoleRepository is a mock implementation of RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]integration.Role, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Role), args.Error(1)
}
