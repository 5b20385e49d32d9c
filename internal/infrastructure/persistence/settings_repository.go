package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sealer encrypts secrets at rest.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type plainSealer struct{}

func (plainSealer) Seal(s string) (string, error) { return s, nil }
func (plainSealer) Open(s string) (string, error) { return s, nil }

// GormSettingsRepository implements integration.SettingsRepository using GORM.
// Password and client secret are sealed before they are written.
type GormSettingsRepository struct {
	db     *gorm.DB
	sealer Sealer
}

// NewGormSettingsRepository creates a new GormSettingsRepository. A nil
// sealer stores secrets as entered.
func NewGormSettingsRepository(db *gorm.DB, sealer Sealer) *GormSettingsRepository {
	if sealer == nil {
		sealer = plainSealer{}
	}
	return &GormSettingsRepository{db: db, sealer: sealer}
}

// FindByTenant returns the tenant's settings
func (r *GormSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*integration.Settings, error) {
	var model models.SettingsModel
	if err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrSettingsNotFound
		}
		return nil, err
	}

	settings := model.ToDomain()
	var err error
	if settings.Credentials.Password, err = r.sealer.Open(model.Password); err != nil {
		return nil, fmt.Errorf("open password: %w", err)
	}
	if settings.Credentials.ClientSecret, err = r.sealer.Open(model.ClientSecret); err != nil {
		return nil, fmt.Errorf("open client secret: %w", err)
	}
	return settings, nil
}

// Save inserts or overwrites the tenant's settings
func (r *GormSettingsRepository) Save(ctx context.Context, s *integration.Settings) error {
	model := models.SettingsModelFromDomain(s)
	var err error
	if model.Password, err = r.sealer.Seal(s.Credentials.Password); err != nil {
		return fmt.Errorf("seal password: %w", err)
	}
	if model.ClientSecret, err = r.sealer.Seal(s.Credentials.ClientSecret); err != nil {
		return fmt.Errorf("seal client secret: %w", err)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "password", "client_id", "client_secret", "url", "updated_at",
		}),
	}).Create(model).Error
}
