package persistence

import (
	"context"
	"errors"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMappingRepository implements integration.MappingRepository using GORM
type GormMappingRepository struct {
	db *gorm.DB
}

// NewGormMappingRepository creates a new GormMappingRepository
func NewGormMappingRepository(db *gorm.DB) *GormMappingRepository {
	return &GormMappingRepository{db: db}
}

// FindByID finds a mapping by ID within a tenant
func (r *GormMappingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*integration.Mapping, error) {
	var model models.MappingModel
	err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByRecordType finds the tenant's mapping for a record type
func (r *GormMappingRepository) FindByRecordType(ctx context.Context, tenantID uuid.UUID, rt integration.RecordType) (*integration.Mapping, error) {
	var model models.MappingModel
	err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Where("record_type = ?", rt.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// List returns every mapping of a tenant ordered by record type
func (r *GormMappingRepository) List(ctx context.Context, tenantID uuid.UUID) ([]integration.Mapping, error) {
	var rows []models.MappingModel
	if err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Order("record_type").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]integration.Mapping, 0, len(rows))
	for i := range rows {
		m, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// Create inserts a new mapping. A second mapping of the same record type
// for a tenant fails with ErrMappingAlreadyExists.
func (r *GormMappingRepository) Create(ctx context.Context, m *integration.Mapping) error {
	model, err := models.MappingModelFromDomain(m)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return integration.ErrMappingAlreadyExists
		}
		return err
	}
	return nil
}

// Update overwrites the associations and configuration of an existing mapping
func (r *GormMappingRepository) Update(ctx context.Context, m *integration.Mapping) error {
	model, err := models.MappingModelFromDomain(m)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&models.MappingModel{}).
		Scopes(TenantScope(m.TenantID)).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"inbound":    model.Inbound,
			"outbound":   model.Outbound,
			"config":     model.Config,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrMappingNotFound
	}
	return nil
}
