package integration

import (
	"errors"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
)

// toDomainError turns integration sentinels into API-visible domain errors.
// Unknown errors pass through unchanged.
func toDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, integration.ErrMappingNotFound),
		errors.Is(err, integration.ErrSettingsNotFound):
		return shared.NewDomainError("NOT_FOUND", err.Error())
	case errors.Is(err, integration.ErrMappingAlreadyExists):
		return shared.NewDomainError("ALREADY_EXISTS", err.Error())
	case errors.Is(err, integration.ErrInvalidRecordType),
		errors.Is(err, integration.ErrMappingInvalidAssociation),
		errors.Is(err, integration.ErrMappingConfigMismatch),
		errors.Is(err, integration.ErrMappingInvalidTenantID),
		errors.Is(err, integration.ErrPasswordTooShort),
		errors.Is(err, integration.ErrPasswordMissingLower),
		errors.Is(err, integration.ErrPasswordMissingUpper),
		errors.Is(err, integration.ErrPasswordMissingDigit),
		errors.Is(err, integration.ErrPasswordMissingSpecial):
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return err
}
