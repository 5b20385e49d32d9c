package console

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Screen owns the unsaved edit state of one record type's mapping.
type Screen struct {
	recordType integration.RecordType
	gateway    Gateway
	store      *Store
	logger     *zap.Logger

	mu            sync.Mutex
	catalog       integration.FieldCatalog
	catalogLoaded bool
	roleCatalog   []integration.Role
	mappingID     uuid.UUID
	seenVersion   uint64
	rows          []Row
	extras        Extras
	loading       bool
	onChange      func()
	unsubscribe   func()
}

// NewScreen creates a screen and subscribes it to store changes.
func NewScreen(rt integration.RecordType, gateway Gateway, store *Store, logger *zap.Logger) *Screen {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Screen{
		recordType: rt,
		gateway:    gateway,
		store:      store,
		logger:     logger.With(zap.String("record_type", rt.String())),
	}
	s.unsubscribe = store.Subscribe(s.onStore)
	return s
}

// RecordType returns the screen's record type
func (s *Screen) RecordType() integration.RecordType {
	return s.recordType
}

// OnChange registers a callback fired after the rows are re-derived.
func (s *Screen) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Close detaches the screen from the store
func (s *Screen) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Load fetches the field catalog (and, for User, the role catalog) and
// derives rows from the store's current mapping list.
func (s *Screen) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	catalog, err := s.gateway.GetMappingCatalog(ctx, s.recordType.SObjectName(), s.recordType.InternalModelName()).Unwrap()
	if err != nil {
		s.logger.Warn("Failed to load field catalog", zap.Error(err))
		return fmt.Errorf("console: load %s catalog: %w", s.recordType, err)
	}

	var roles []integration.Role
	if s.recordType == integration.RecordTypeUser {
		roles, err = s.gateway.GetRoleCatalog(ctx).Unwrap()
		if err != nil {
			s.logger.Warn("Failed to load role catalog", zap.Error(err))
			roles = nil
		}
	}

	s.mu.Lock()
	s.catalog = catalog
	s.catalogLoaded = true
	s.roleCatalog = roles
	s.mu.Unlock()

	s.derive(s.store.State(), false)
	return nil
}

// Loaded reports whether the catalog has been fetched
func (s *Screen) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogLoaded
}

// Loading reports whether a fetch or save is in flight
func (s *Screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Catalog returns the loaded field catalog
func (s *Screen) Catalog() integration.FieldCatalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// RoleCatalog returns the roles selectable for User mappings
func (s *Screen) RoleCatalog() []integration.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roleCatalog)
}

// Rows returns a copy of the current rows
func (s *Screen) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

// Extras returns the current record-type specific selection
func (s *Screen) Extras() Extras {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Extras{Roles: slices.Clone(s.extras.Roles), CutoffDate: cloneDate(s.extras.CutoffDate)}
}

// MappingID returns the saved mapping's ID, or uuid.Nil if never saved
func (s *Screen) MappingID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mappingID
}

// UpdateRow replaces the row with the given ID. No validation is applied;
// half-filled rows are expected while editing.
func (s *Screen) UpdateRow(id uuid.UUID, row Row) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReplaceRow(s.rows, id, row)
}

// AvailableOptions lists the catalog values row id may choose for key.
func (s *Screen) AvailableOptions(id uuid.UUID, key FieldKey) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AvailableOptions(s.catalog, s.rows, id, key)
}

// SetRoles sets the selected roles (User only)
func (s *Screen) SetRoles(roles []integration.Role) {
	s.mu.Lock()
	s.extras.Roles = slices.Clone(roles)
	s.mu.Unlock()
}

// SetCutoffDate sets the cutoff date (Opportunity only); nil clears it.
func (s *Screen) SetCutoffDate(d *time.Time) {
	s.mu.Lock()
	s.extras.CutoffDate = cloneDate(d)
	s.mu.Unlock()
}

// Save serializes the rows and creates or updates the mapping. On success the
// store's refetch signal is raised. Failures are logged and otherwise ignored:
// rows stay exactly as edited.
func (s *Screen) Save(ctx context.Context) bool {
	s.mu.Lock()
	s.loading = true
	m := Serialize(s.recordType, s.mappingID, s.rows, s.extras)
	s.mu.Unlock()

	var err error
	if m.IsPersisted() {
		_, err = s.gateway.UpdateMapping(ctx, m.ID, m).Unwrap()
	} else {
		_, err = s.gateway.CreateMapping(ctx, m).Unwrap()
	}

	s.setLoading(false)
	if err != nil {
		s.logger.Warn("Mapping save failed", zap.Error(err))
		return false
	}

	s.logger.Info("Mapping saved",
		zap.Int("inbound", len(m.Inbound)),
		zap.Int("outbound", len(m.Outbound)))
	s.store.RequestRefetch()
	return true
}

func (s *Screen) onStore(st State) {
	s.mu.Lock()
	stale := s.catalogLoaded && st.MappingsVersion > s.seenVersion
	s.mu.Unlock()
	if stale {
		s.derive(st, true)
	}
}

// derive rebuilds the rows from st. Snapshots older than the last derived one
// are dropped; with onlyNewer, so are snapshots of the same version.
func (s *Screen) derive(st State, onlyNewer bool) {
	var saved *integration.Mapping
	if m, ok := st.MappingFor(s.recordType); ok {
		saved = &m
	}

	s.mu.Lock()
	if st.MappingsVersion < s.seenVersion || (onlyNewer && st.MappingsVersion == s.seenVersion) {
		s.mu.Unlock()
		return
	}
	d := DeriveRows(s.recordType, s.catalog, saved, s.roleCatalog)
	s.rows = d.Rows
	s.extras = d.Extras
	s.seenVersion = st.MappingsVersion
	s.mappingID = uuid.Nil
	if saved != nil {
		s.mappingID = saved.ID
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

func (s *Screen) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func cloneDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
