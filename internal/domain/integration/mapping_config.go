package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CalendarDateLayout is the wire format of configuration dates.
const CalendarDateLayout = "2006-01-02"

// MappingConfig is the record-type specific configuration of a mapping.
// Only User and Opportunity carry one; the other record types use nil.
type MappingConfig interface {
	ConfigFor() RecordType
}

// UserConfig restricts User synchronization to a set of internal roles.
type UserConfig struct {
	RoleIDs []string `json:"role_ids"`
}

// ConfigFor implements MappingConfig
func (UserConfig) ConfigFor() RecordType { return RecordTypeUser }

// OpportunityConfig limits Opportunity synchronization to records after a cutoff date.
type OpportunityConfig struct {
	CutoffDate *time.Time
}

// ConfigFor implements MappingConfig
func (OpportunityConfig) ConfigFor() RecordType { return RecordTypeOpportunity }

type opportunityConfigJSON struct {
	CutoffDate string `json:"cutoff_date,omitempty"`
}

// MarshalJSON writes the cutoff as a calendar date.
func (c OpportunityConfig) MarshalJSON() ([]byte, error) {
	var out opportunityConfigJSON
	if c.CutoffDate != nil && !c.CutoffDate.IsZero() {
		out.CutoffDate = c.CutoffDate.Format(CalendarDateLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a calendar date or an RFC 3339 timestamp.
// An unparsable value leaves the cutoff unset.
func (c *OpportunityConfig) UnmarshalJSON(data []byte) error {
	var in opportunityConfigJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.CutoffDate = ParseCalendarDate(in.CutoffDate)
	return nil
}

// ParseCalendarDate parses YYYY-MM-DD or RFC 3339 into a UTC calendar date.
func ParseCalendarDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{CalendarDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// EncodeConfig serializes a configuration. A nil config encodes to nil.
func EncodeConfig(cfg MappingConfig) ([]byte, error) {
	if cfg == nil {
		return nil, nil
	}
	return json.Marshal(cfg)
}

// DecodeConfig reads the configuration of the given record type.
// Record types without a configuration ignore the payload.
func DecodeConfig(rt RecordType, raw []byte) (MappingConfig, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch rt {
	case RecordTypeUser:
		var cfg UserConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("integration: decode user config: %w", err)
		}
		return cfg, nil
	case RecordTypeOpportunity:
		var cfg OpportunityConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("integration: decode opportunity config: %w", err)
		}
		if cfg.CutoffDate == nil {
			return nil, nil
		}
		return cfg, nil
	default:
		return nil, nil
	}
}
