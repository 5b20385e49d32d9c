package console

import (
	"slices"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// Row is one editable field pairing. IDs are generated locally and never sent
// to the server. Empty Source or Target means unset.
type Row struct {
	ID       uuid.UUID
	Source   string
	Target   string
	Inbound  bool
	Outbound bool
}

// NewRow creates a row with a fresh ID
func NewRow(source, target string, inbound, outbound bool) Row {
	return Row{
		ID:       uuid.New(),
		Source:   source,
		Target:   target,
		Inbound:  inbound,
		Outbound: outbound,
	}
}

// NewPlaceholderRow creates an empty row
func NewPlaceholderRow() Row {
	return NewRow("", "", false, false)
}

// IsComplete reports whether both fields are chosen
func (r Row) IsComplete() bool {
	return r.Source != "" && r.Target != ""
}

// IsPlaceholder reports whether neither field is chosen
func (r Row) IsPlaceholder() bool {
	return r.Source == "" && r.Target == ""
}

// FieldKey selects the source or target column of a row.
type FieldKey int

const (
	KeySource FieldKey = iota
	KeyTarget
)

func (k FieldKey) String() string {
	if k == KeyTarget {
		return "target"
	}
	return "source"
}

func (k FieldKey) of(r Row) string {
	if k == KeyTarget {
		return r.Target
	}
	return r.Source
}

func (k FieldKey) options(c integration.FieldCatalog) []string {
	if k == KeyTarget {
		return c.TargetFields
	}
	return c.SourceFields
}

// Extras is the record-type specific selection edited next to the rows.
type Extras struct {
	// Roles selected for the User record type
	Roles []integration.Role
	// CutoffDate selected for the Opportunity record type
	CutoffDate *time.Time
}

// AvailableOptions returns the catalog entries for key that no row other than
// rowID has chosen. The calling row always keeps its own value as an option,
// even when another row shares it or the catalog no longer lists it.
func AvailableOptions(catalog integration.FieldCatalog, rows []Row, rowID uuid.UUID, key FieldKey) []string {
	var own string
	taken := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.ID == rowID {
			own = key.of(r)
			continue
		}
		if v := key.of(r); v != "" {
			taken[v] = struct{}{}
		}
	}
	delete(taken, own)

	all := key.options(catalog)
	out := make([]string, 0, len(all)+1)
	for _, v := range all {
		if _, ok := taken[v]; !ok {
			out = append(out, v)
		}
	}
	if own != "" && !slices.Contains(out, own) {
		out = append(out, own)
	}
	return out
}

// ReplaceRow swaps the row with the same ID in place. It reports false when
// no row has that ID.
func ReplaceRow(rows []Row, id uuid.UUID, next Row) bool {
	i := slices.IndexFunc(rows, func(r Row) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	next.ID = id
	rows[i] = next
	return true
}
