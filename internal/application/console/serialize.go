package console

import (
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// Serialize turns edited rows back into a mapping. Rows missing either field
// are dropped. The configuration is rebuilt from extras, never carried over.
func Serialize(rt integration.RecordType, id uuid.UUID, rows []Row, extras Extras) integration.Mapping {
	m := integration.Mapping{
		RecordType: rt,
		Inbound:    []integration.Association{},
		Outbound:   []integration.Association{},
		Config:     buildConfig(rt, extras),
	}
	m.ID = id

	for _, r := range rows {
		if !r.IsComplete() {
			continue
		}
		if r.Inbound {
			m.Inbound = append(m.Inbound, integration.Association{Destination: r.Target, Source: r.Source})
		}
		if r.Outbound {
			m.Outbound = append(m.Outbound, integration.Association{Destination: r.Source, Source: r.Target})
		}
	}
	return m
}

func buildConfig(rt integration.RecordType, extras Extras) integration.MappingConfig {
	switch rt {
	case integration.RecordTypeUser:
		return integration.UserConfig{RoleIDs: integration.RoleIDs(extras.Roles)}
	case integration.RecordTypeOpportunity:
		if extras.CutoffDate == nil || extras.CutoffDate.IsZero() {
			return nil
		}
		t := *extras.CutoffDate
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return integration.OpportunityConfig{CutoffDate: &d}
	}
	return nil
}
