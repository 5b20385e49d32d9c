package integration

import (
	"context"

	"github.com/google/uuid"
)

// Role is an entry of the internal role catalog.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleRepository reads the role catalog of a tenant.
type RoleRepository interface {
	ListRoles(ctx context.Context, tenantID uuid.UUID) ([]Role, error)
}

// ResolveRoles returns the catalog roles whose IDs appear in ids, in ids order.
// Unknown IDs are skipped.
func ResolveRoles(catalog []Role, ids []string) []Role {
	byID := make(map[string]Role, len(catalog))
	for _, r := range catalog {
		byID[r.ID] = r
	}
	out := make([]Role, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RoleIDs extracts the IDs of roles.
func RoleIDs(roles []Role) []string {
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids
}
