package models

import (
	"time"

	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to a domain TenantEntity of tenantID
func (m *BaseModel) ToDomain(tenantID uuid.UUID) shared.TenantEntity {
	return shared.TenantEntity{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: tenantID,
	}
}

// FromDomain populates BaseModel from a domain TenantEntity
func (m *BaseModel) FromDomain(e shared.TenantEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&SettingsModel{},
		&MappingModel{},
		&RoleModel{},
	}
}
