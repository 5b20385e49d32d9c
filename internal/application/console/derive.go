package console

import (
	"github.com/crmconsole/backend/internal/domain/integration"
)

// Derivation is the editable state built from a catalog and a saved mapping.
type Derivation struct {
	Rows   []Row
	Extras Extras
}

// DeriveRows builds the rows for a record type. mapping is nil when nothing
// has been saved yet; roleCatalog is only consulted for User.
//
// Inbound associations become rows keyed on the internal field, outbound ones
// merge on the CRM field. An association hitting an existing row marks it
// bidirectional. Placeholders pad the list up to the number of CRM fields.
func DeriveRows(rt integration.RecordType, catalog integration.FieldCatalog, mapping *integration.Mapping, roleCatalog []integration.Role) Derivation {
	rows := make([]Row, 0, len(catalog.SourceFields))
	var extras Extras

	if mapping != nil {
		for _, a := range mapping.Inbound {
			if i := indexBy(rows, KeyTarget, a.Destination); i >= 0 {
				rows[i].Inbound = true
				rows[i].Outbound = true
				continue
			}
			rows = append(rows, NewRow(a.Source, a.Destination, true, false))
		}
		for _, a := range mapping.Outbound {
			if i := indexBy(rows, KeySource, a.Destination); i >= 0 {
				rows[i].Inbound = true
				rows[i].Outbound = true
				continue
			}
			rows = append(rows, NewRow(a.Destination, a.Source, false, true))
		}
		extras = deriveExtras(rt, mapping.Config, roleCatalog)
	}

	for range PlaceholderCount(len(catalog.SourceFields), len(rows)) {
		rows = append(rows, NewPlaceholderRow())
	}
	return Derivation{Rows: rows, Extras: extras}
}

// PlaceholderCount is max(0, sourceFields-produced).
func PlaceholderCount(sourceFields, produced int) int {
	return max(0, sourceFields-produced)
}

func deriveExtras(rt integration.RecordType, cfg integration.MappingConfig, roleCatalog []integration.Role) Extras {
	switch c := cfg.(type) {
	case integration.UserConfig:
		if rt == integration.RecordTypeUser {
			return Extras{Roles: integration.ResolveRoles(roleCatalog, c.RoleIDs)}
		}
	case integration.OpportunityConfig:
		if rt == integration.RecordTypeOpportunity && c.CutoffDate != nil {
			d := *c.CutoffDate
			return Extras{CutoffDate: &d}
		}
	}
	return Extras{}
}

func indexBy(rows []Row, key FieldKey, value string) int {
	if value == "" {
		return -1
	}
	for i, r := range rows {
		if key.of(r) == value {
			return i
		}
	}
	return -1
}
