package models

import (
	"encoding/json"
	"fmt"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// SettingsModel is the persistence model of a tenant's CRM credentials.
// Password and ClientSecret hold sealed values.
type SettingsModel struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_integration_settings_tenant"`
	Username     string    `gorm:"type:varchar(255);not null"`
	Password     string    `gorm:"type:text;not null"`
	ClientID     string    `gorm:"type:varchar(255);not null"`
	ClientSecret string    `gorm:"type:text;not null"`
	URL          string    `gorm:"column:url;type:varchar(512);not null"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "integration_settings"
}

// ToDomain converts the model to domain Settings. Secrets are returned
// exactly as stored; unsealing is the repository's job.
func (m *SettingsModel) ToDomain() *integration.Settings {
	return &integration.Settings{
		TenantEntity: m.BaseModel.ToDomain(m.TenantID),
		Credentials: integration.Credentials{
			Username:     m.Username,
			Password:     m.Password,
			ClientID:     m.ClientID,
			ClientSecret: m.ClientSecret,
			URL:          m.URL,
		},
	}
}

// SettingsModelFromDomain creates a model from domain Settings
func SettingsModelFromDomain(s *integration.Settings) *SettingsModel {
	m := &SettingsModel{
		TenantID:     s.TenantID,
		Username:     s.Credentials.Username,
		Password:     s.Credentials.Password,
		ClientID:     s.Credentials.ClientID,
		ClientSecret: s.Credentials.ClientSecret,
		URL:          s.Credentials.URL,
	}
	m.BaseModel.FromDomain(s.TenantEntity)
	return m
}

// MappingModel is the persistence model of one record type's field mapping.
type MappingModel struct {
	BaseModel
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_integration_mappings_tenant_type,priority:1"`
	RecordType string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_integration_mappings_tenant_type,priority:2"`
	Inbound    string    `gorm:"type:jsonb;not null"`
	Outbound   string    `gorm:"type:jsonb;not null"`
	Config     *string   `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (MappingModel) TableName() string {
	return "integration_mappings"
}

// ToDomain converts the model to a domain Mapping.
func (m *MappingModel) ToDomain() (*integration.Mapping, error) {
	rt, err := integration.ParseRecordType(m.RecordType)
	if err != nil {
		return nil, err
	}
	var inbound, outbound []integration.Association
	if err := json.Unmarshal([]byte(m.Inbound), &inbound); err != nil {
		return nil, fmt.Errorf("decode inbound associations: %w", err)
	}
	if err := json.Unmarshal([]byte(m.Outbound), &outbound); err != nil {
		return nil, fmt.Errorf("decode outbound associations: %w", err)
	}
	var raw []byte
	if m.Config != nil {
		raw = []byte(*m.Config)
	}
	cfg, err := integration.DecodeConfig(rt, raw)
	if err != nil {
		return nil, err
	}

	return &integration.Mapping{
		TenantEntity: m.BaseModel.ToDomain(m.TenantID),
		RecordType:   rt,
		Inbound:      nonNil(inbound),
		Outbound:     nonNil(outbound),
		Config:       cfg,
	}, nil
}

// MappingModelFromDomain creates a model from a domain Mapping
func MappingModelFromDomain(mapping *integration.Mapping) (*MappingModel, error) {
	inbound, err := json.Marshal(nonNil(mapping.Inbound))
	if err != nil {
		return nil, err
	}
	outbound, err := json.Marshal(nonNil(mapping.Outbound))
	if err != nil {
		return nil, err
	}
	cfg, err := integration.EncodeConfig(mapping.Config)
	if err != nil {
		return nil, err
	}

	m := &MappingModel{
		TenantID:   mapping.TenantID,
		RecordType: mapping.RecordType.String(),
		Inbound:    string(inbound),
		Outbound:   string(outbound),
	}
	if cfg != nil {
		s := string(cfg)
		m.Config = &s
	}
	m.BaseModel.FromDomain(mapping.TenantEntity)
	return m, nil
}

func nonNil(in []integration.Association) []integration.Association {
	if in == nil {
		return []integration.Association{}
	}
	return in
}

// RoleModel is a row of the internal role catalog.
type RoleModel struct {
	ID       string    `gorm:"type:varchar(64);primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the model to a domain Role
func (m *RoleModel) ToDomain() integration.Role {
	return integration.Role{ID: m.ID, Name: m.Name}
}
