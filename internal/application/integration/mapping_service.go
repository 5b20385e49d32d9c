package integration

import (
	"context"
	"errors"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// MappingService manages field mappings
type MappingService struct {
	repo     integration.MappingRepository
	notifier ChangeNotifier
	metrics  MappingMetrics
	logger   *zap.Logger
}

// MappingServiceOption configures a MappingService
type MappingServiceOption func(*MappingService)

// WithChangeNotifier publishes a MappingChange after each successful save
func WithChangeNotifier(n ChangeNotifier) MappingServiceOption {
	return func(s *MappingService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMappingMetrics records save outcomes
func WithMappingMetrics(m MappingMetrics) MappingServiceOption {
	return func(s *MappingService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewMappingService creates a new mapping service
func NewMappingService(repo integration.MappingRepository, logger *zap.Logger, opts ...MappingServiceOption) *MappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MappingService{
		repo:     repo,
		notifier: noopNotifier{},
		metrics:  noopMetrics{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every mapping of the tenant
func (s *MappingService) List(ctx context.Context, tenantID uuid.UUID) ([]MappingResponse, error) {
	mappings, err := s.repo.List(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to list mappings", zap.Error(err))
		return nil, err
	}
	out := make([]MappingResponse, 0, len(mappings))
	for i := range mappings {
		resp, err := ToMappingResponse(&mappings[i])
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Create stores the first mapping of a record type
func (s *MappingService) Create(ctx context.Context, tenantID uuid.UUID, req MappingRequest) (*MappingResponse, error) {
	rt, cfg, err := parseRequest(req)
	if err != nil {
		return nil, toDomainError(err)
	}

	existing, err := s.repo.FindByRecordType(ctx, tenantID, rt)
	if err != nil && !errors.Is(err, integration.ErrMappingNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, toDomainError(integration.ErrMappingAlreadyExists)
	}

	m, err := integration.NewMapping(tenantID, rt, FromAssociationDTOs(req.Inbound), FromAssociationDTOs(req.Outbound), cfg)
	if err != nil {
		return nil, toDomainError(err)
	}

	err = s.repo.Create(ctx, m)
	s.metrics.RecordMappingSave(ctx, rt, OperationCreate, err)
	if err != nil {
		s.logger.Error("Failed to create mapping", zap.String("record_type", rt.String()), zap.Error(err))
		return nil, toDomainError(err)
	}

	s.logger.Info("Mapping created",
		zap.String("id", m.ID.String()),
		zap.String("record_type", rt.String()),
		zap.Int("inbound", len(m.Inbound)),
		zap.Int("outbound", len(m.Outbound)))
	s.publish(ctx, m, OperationCreate)

	resp, err := ToMappingResponse(m)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update replaces an existing mapping
func (s *MappingService) Update(ctx context.Context, tenantID, id uuid.UUID, req MappingRequest) (*MappingResponse, error) {
	rt, cfg, err := parseRequest(req)
	if err != nil {
		return nil, toDomainError(err)
	}

	m, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, toDomainError(err)
	}
	if m.RecordType != rt {
		return nil, shared.NewDomainError("INVALID_INPUT", "record type cannot be changed")
	}

	if err := m.Replace(FromAssociationDTOs(req.Inbound), FromAssociationDTOs(req.Outbound), cfg); err != nil {
		return nil, toDomainError(err)
	}

	err = s.repo.Update(ctx, m)
	s.metrics.RecordMappingSave(ctx, rt, OperationUpdate, err)
	if err != nil {
		s.logger.Error("Failed to update mapping", zap.String("id", id.String()), zap.Error(err))
		return nil, toDomainError(err)
	}

	s.logger.Info("Mapping updated", zap.String("id", id.String()), zap.String("record_type", rt.String()))
	s.publish(ctx, m, OperationUpdate)

	resp, err := ToMappingResponse(m)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *MappingService) publish(ctx context.Context, m *integration.Mapping, op string) {
	change := MappingChange{
		TenantID:   m.TenantID,
		MappingID:  m.ID,
		RecordType: m.RecordType,
		Operation:  op,
		ChangedAt:  time.Now(),
	}
	if err := s.notifier.Publish(ctx, change); err != nil {
		// The save already committed; subscribers will catch up on their next fetch.
		s.logger.Warn("Failed to publish mapping change", zap.Error(err))
	}
}

func parseRequest(req MappingRequest) (integration.RecordType, integration.MappingConfig, error) {
	rt, err := integration.ParseRecordType(req.RecordType)
	if err != nil {
		return "", nil, err
	}
	cfg, err := integration.DecodeConfig(rt, req.Config)
	if err != nil {
		return "", nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return rt, cfg, nil
}
