package console

import (
	"context"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Gateway is the set of remote operations the console consumes.
type Gateway interface {
	GetSettings(ctx context.Context) shared.Result[integration.Credentials]
	SaveSettings(ctx context.Context, creds integration.Credentials) shared.Result[struct{}]
	GetMappingCatalog(ctx context.Context, sobjectName, internalModelName string) shared.Result[integration.FieldCatalog]
	GetMappingList(ctx context.Context) shared.Result[[]integration.Mapping]
	CreateMapping(ctx context.Context, m integration.Mapping) shared.Result[integration.Mapping]
	UpdateMapping(ctx context.Context, id uuid.UUID, m integration.Mapping) shared.Result[integration.Mapping]
	GetRoleCatalog(ctx context.Context) shared.Result[[]integration.Role]
}

// Notifier surfaces transient user-facing messages.
type Notifier interface {
	Success(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Success implements Notifier
func (f NotifierFunc) Success(message string) { f(message) }
