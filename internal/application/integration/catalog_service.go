package integration

import (
	"context"
	"fmt"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CredentialSource supplies the tenant's stored credentials
type CredentialSource interface {
	Credentials(ctx context.Context, tenantID uuid.UUID) (integration.Credentials, error)
}

// CatalogService composes field catalogs from the CRM and the internal model registry
type CatalogService struct {
	creds    CredentialSource
	provider integration.CatalogProvider
	registry integration.ModelRegistry
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	creds CredentialSource,
	provider integration.CatalogProvider,
	registry integration.ModelRegistry,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		creds:    creds,
		provider: provider,
		registry: registry,
		logger:   logger,
	}
}

// Get returns the catalog for a CRM object and an internal model
func (s *CatalogService) Get(ctx context.Context, tenantID uuid.UUID, sobjectName, modelName string) (*CatalogResponse, error) {
	targets, ok := s.registry.Fields(modelName)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown internal model %q", modelName))
	}

	creds, err := s.creds.Credentials(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sources, err := s.provider.DescribeFields(ctx, creds, sobjectName)
	if err != nil {
		s.logger.Warn("CRM describe failed",
			zap.String("sobject", sobjectName),
			zap.Error(err))
		return nil, shared.NewDomainError("UPSTREAM_FAILED", err.Error())
	}

	return &CatalogResponse{
		SourceFields: sources,
		TargetFields: targets,
	}, nil
}

// RoleService lists the internal role catalog
type RoleService struct {
	repo integration.RoleRepository
}

// NewRoleService creates a new role service
func NewRoleService(repo integration.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

// List returns the tenant's roles
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID) ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToRoleResponses(roles), nil
}
