package integration

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettingsService reads and stores the tenant's Salesforce credentials
type SettingsService struct {
	repo   integration.SettingsRepository
	logger *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo integration.SettingsRepository, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the stored settings. A tenant without settings gets an empty record.
func (s *SettingsService) Get(ctx context.Context, tenantID uuid.UUID, reveal bool) (*SettingsResponse, error) {
	settings, err := s.repo.FindByTenant(ctx, tenantID)
	if errors.Is(err, integration.ErrSettingsNotFound) {
		return &SettingsResponse{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to load settings", zap.Error(err))
		return nil, err
	}
	resp := ToSettingsResponse(settings, reveal)
	return &resp, nil
}

// Save validates and stores credentials, replacing any previous ones
func (s *SettingsService) Save(ctx context.Context, tenantID uuid.UUID, req SettingsRequest) error {
	creds := req.Credentials()
	if err := integration.CheckPassword(creds.Password); err != nil {
		return toDomainError(err)
	}
	if err := checkInstanceURL(creds.URL); err != nil {
		return err
	}

	settings, err := s.repo.FindByTenant(ctx, tenantID)
	switch {
	case errors.Is(err, integration.ErrSettingsNotFound):
		settings, err = integration.NewSettings(tenantID, creds)
		if err != nil {
			return toDomainError(err)
		}
	case err != nil:
		s.logger.Error("Failed to load settings", zap.Error(err))
		return err
	default:
		settings.Credentials = creds
		settings.Touch()
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		s.logger.Error("Failed to save settings", zap.Error(err))
		return err
	}
	s.logger.Info("Integration settings saved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("username", creds.Username))
	return nil
}

// Credentials returns the stored credentials for server-side use.
func (s *SettingsService) Credentials(ctx context.Context, tenantID uuid.UUID) (integration.Credentials, error) {
	settings, err := s.repo.FindByTenant(ctx, tenantID)
	if errors.Is(err, integration.ErrSettingsNotFound) {
		return integration.Credentials{}, shared.ErrNotConfigured
	}
	if err != nil {
		return integration.Credentials{}, err
	}
	if settings.Credentials.IsZero() {
		return integration.Credentials{}, shared.ErrNotConfigured
	}
	return settings.Credentials, nil
}

func checkInstanceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid instance url %q", raw))
	}
	return nil
}
