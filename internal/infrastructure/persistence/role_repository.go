package persistence

import (
	"context"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleRepository reads the role catalog using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// ListRoles returns the tenant's roles ordered by name
func (r *GormRoleRepository) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]integration.Role, error) {
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Order("name, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]integration.Role, 0, len(rows))
	for i := range rows {
		roles = append(roles, rows[i].ToDomain())
	}
	return roles, nil
}

// Upsert inserts roles or renames existing ones. Used to seed local databases.
func (r *GormRoleRepository) Upsert(ctx context.Context, tenantID uuid.UUID, roles []integration.Role) error {
	if len(roles) == 0 {
		return nil
	}
	rows := make([]models.RoleModel, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, models.RoleModel{ID: role.ID, TenantID: tenantID, Name: role.Name})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&rows).Error
}
