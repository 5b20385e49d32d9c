package integration

import (
	"context"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// MappingChange announces that a tenant's mapping was created or updated.
type MappingChange struct {
	TenantID   uuid.UUID              `json:"tenant_id"`
	MappingID  uuid.UUID              `json:"mapping_id"`
	RecordType integration.RecordType `json:"record_type"`
	Operation  string                 `json:"operation"`
	ChangedAt  time.Time              `json:"changed_at"`
}

// ChangeNotifier fans mapping changes out to every API instance.
type ChangeNotifier interface {
	Publish(ctx context.Context, change MappingChange) error
}

// MappingMetrics records mapping save outcomes.
type MappingMetrics interface {
	RecordMappingSave(ctx context.Context, rt integration.RecordType, operation string, err error)
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, MappingChange) error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordMappingSave(context.Context, integration.RecordType, string, error) {}
