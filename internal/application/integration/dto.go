package integration

import (
	"encoding/json"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Mapping DTOs
// ---------------------------------------------------------------------------

// AssociationDTO is one field pairing on the wire
type AssociationDTO struct {
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// MappingResponse represents a mapping in API responses
type MappingResponse struct {
	ID         uuid.UUID              `json:"id"`
	RecordType integration.RecordType `json:"record_type"`
	Inbound    []AssociationDTO       `json:"inbound"`
	Outbound   []AssociationDTO       `json:"outbound"`
	Config     json.RawMessage        `json:"config,omitempty"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// MappingRequest is the body of create and update calls
type MappingRequest struct {
	RecordType string           `json:"record_type" binding:"required"`
	Inbound    []AssociationDTO `json:"inbound" binding:"dive"`
	Outbound   []AssociationDTO `json:"outbound" binding:"dive"`
	Config     json.RawMessage  `json:"config,omitempty"`
}

// ---------------------------------------------------------------------------
// Settings DTOs
// ---------------------------------------------------------------------------

// SettingsRequest carries the credentials to store
type SettingsRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,crm_password"`
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
	URL          string `json:"url" binding:"required,url"`
}

// SettingsResponse returns stored credentials, redacted unless the caller may read secrets
type SettingsResponse struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	URL          string `json:"url"`
	Configured   bool   `json:"configured"`
}

// ---------------------------------------------------------------------------
// Catalog DTOs
// ---------------------------------------------------------------------------

// CatalogResponse lists the mappable fields of one record type
type CatalogResponse struct {
	SourceFields []string `json:"source_fields"`
	TargetFields []string `json:"target_fields"`
}

// RoleResponse is one role catalog entry
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

// ToMappingResponse converts a domain mapping
func ToMappingResponse(m *integration.Mapping) (MappingResponse, error) {
	raw, err := integration.EncodeConfig(m.Config)
	if err != nil {
		return MappingResponse{}, err
	}
	return MappingResponse{
		ID:         m.ID,
		RecordType: m.RecordType,
		Inbound:    toAssociationDTOs(m.Inbound),
		Outbound:   toAssociationDTOs(m.Outbound),
		Config:     raw,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

// ToDomain converts the response back into a domain mapping (client side).
func (r MappingResponse) ToDomain() (integration.Mapping, error) {
	cfg, err := integration.DecodeConfig(r.RecordType, r.Config)
	if err != nil {
		return integration.Mapping{}, err
	}
	m := integration.Mapping{
		RecordType: r.RecordType,
		Inbound:    FromAssociationDTOs(r.Inbound),
		Outbound:   FromAssociationDTOs(r.Outbound),
		Config:     cfg,
	}
	m.ID = r.ID
	m.UpdatedAt = r.UpdatedAt
	return m, nil
}

// NewMappingRequest builds a request body from a domain mapping (client side).
func NewMappingRequest(m integration.Mapping) (MappingRequest, error) {
	raw, err := integration.EncodeConfig(m.Config)
	if err != nil {
		return MappingRequest{}, err
	}
	return MappingRequest{
		RecordType: m.RecordType.String(),
		Inbound:    toAssociationDTOs(m.Inbound),
		Outbound:   toAssociationDTOs(m.Outbound),
		Config:     raw,
	}, nil
}

// ToSettingsResponse converts stored settings; reveal controls whether secrets are returned.
func ToSettingsResponse(s *integration.Settings, reveal bool) SettingsResponse {
	if s == nil {
		return SettingsResponse{}
	}
	c := s.Credentials
	if !reveal {
		c = c.Redacted()
	}
	return SettingsResponse{
		Username:     c.Username,
		Password:     c.Password,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		URL:          c.URL,
		Configured:   !s.Credentials.IsZero(),
	}
}

// Credentials converts the request into domain credentials
func (r SettingsRequest) Credentials() integration.Credentials {
	return integration.Credentials{
		Username:     r.Username,
		Password:     r.Password,
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
		URL:          r.URL,
	}
}

// Credentials converts the response into domain credentials (client side).
func (r SettingsResponse) Credentials() integration.Credentials {
	return integration.Credentials{
		Username:     r.Username,
		Password:     r.Password,
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
		URL:          r.URL,
	}
}

// ToRoleResponses converts the role catalog
func ToRoleResponses(roles []integration.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleResponse{ID: r.ID, Name: r.Name})
	}
	return out
}

func toAssociationDTOs(in []integration.Association) []AssociationDTO {
	out := make([]AssociationDTO, 0, len(in))
	for _, a := range in {
		out = append(out, AssociationDTO{Source: a.Source, Destination: a.Destination})
	}
	return out
}

// FromAssociationDTOs converts wire associations into domain associations
func FromAssociationDTOs(in []AssociationDTO) []integration.Association {
	out := make([]integration.Association, 0, len(in))
	for _, a := range in {
		out = append(out, integration.Association{Source: a.Source, Destination: a.Destination})
	}
	return out
}
