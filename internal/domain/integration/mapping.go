package integration

import (
	"context"
	"errors"
	"strings"

	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrMappingInvalidTenantID    = errors.New("integration: invalid tenant ID")
	ErrMappingInvalidAssociation = errors.New("integration: association requires both source and destination")
	ErrMappingConfigMismatch     = errors.New("integration: configuration does not match record type")
	ErrMappingNotFound           = errors.New("integration: mapping not found")
	ErrMappingAlreadyExists      = errors.New("integration: mapping already exists for record type")
)

// ---------------------------------------------------------------------------
// Association
// ---------------------------------------------------------------------------

// Association pairs two field names. For inbound entries Destination is the
// internal field and Source the CRM field; outbound entries are the reverse.
type Association struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// IsComplete reports whether both sides are set.
func (a Association) IsComplete() bool {
	return strings.TrimSpace(a.Source) != "" && strings.TrimSpace(a.Destination) != ""
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

// Mapping is the saved field mapping of one record type for a tenant.
// A tenant has at most one mapping per record type.
type Mapping struct {
	shared.TenantEntity

	// RecordType is the mapped CRM object kind
	RecordType RecordType
	// Inbound associations, CRM to internal
	Inbound []Association
	// Outbound associations, internal to CRM
	Outbound []Association
	// Config is nil for record types without configuration
	Config MappingConfig
}

// NewMapping creates a new mapping with a generated ID
func NewMapping(tenantID uuid.UUID, rt RecordType, inbound, outbound []Association, cfg MappingConfig) (*Mapping, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMappingInvalidTenantID
	}
	m := &Mapping{
		TenantEntity: shared.NewTenantEntity(tenantID),
		RecordType:   rt,
		Inbound:      nonNil(inbound),
		Outbound:     nonNil(outbound),
		Config:       cfg,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks record type, association completeness and config variant.
func (m *Mapping) Validate() error {
	if !m.RecordType.IsValid() {
		return ErrInvalidRecordType
	}
	for _, a := range m.Inbound {
		if !a.IsComplete() {
			return ErrMappingInvalidAssociation
		}
	}
	for _, a := range m.Outbound {
		if !a.IsComplete() {
			return ErrMappingInvalidAssociation
		}
	}
	if m.Config != nil && m.Config.ConfigFor() != m.RecordType {
		return ErrMappingConfigMismatch
	}
	return nil
}

// Replace swaps the associations and configuration wholesale.
func (m *Mapping) Replace(inbound, outbound []Association, cfg MappingConfig) error {
	next := *m
	next.Inbound = nonNil(inbound)
	next.Outbound = nonNil(outbound)
	next.Config = cfg
	if err := next.Validate(); err != nil {
		return err
	}
	*m = next
	m.Touch()
	return nil
}

func nonNil(in []Association) []Association {
	if in == nil {
		return []Association{}
	}
	return in
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// MappingReader defines the interface for reading mappings
type MappingReader interface {
	// FindByID finds a mapping by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Mapping, error)

	// FindByRecordType finds the tenant's mapping for a record type
	FindByRecordType(ctx context.Context, tenantID uuid.UUID, rt RecordType) (*Mapping, error)

	// List returns every mapping of a tenant
	List(ctx context.Context, tenantID uuid.UUID) ([]Mapping, error)
}

// MappingWriter defines the interface for persisting mappings
type MappingWriter interface {
	// Create inserts a new mapping
	Create(ctx context.Context, m *Mapping) error

	// Update overwrites an existing mapping
	Update(ctx context.Context, m *Mapping) error
}

// MappingRepository defines the full interface for mapping persistence
type MappingRepository interface {
	MappingReader
	MappingWriter
}
