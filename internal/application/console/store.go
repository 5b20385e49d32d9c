package console

import (
	"slices"
	"sync"

	"github.com/crmconsole/backend/internal/domain/integration"
)

// State is a snapshot of the shared console data.
type State struct {
	Mappings         []integration.Mapping
	MappingsVersion  uint64
	Settings         integration.Credentials
	SettingsLoaded   bool
	RefetchRequested bool
}

// MappingFor returns the saved mapping of a record type, if any.
func (s State) MappingFor(rt integration.RecordType) (integration.Mapping, bool) {
	for _, m := range s.Mappings {
		if m.RecordType == rt {
			return m, true
		}
	}
	return integration.Mapping{}, false
}

// Store is the single place shared console state is mutated. Subscribers are
// called after every mutation with the new snapshot, outside the lock, so they
// may mutate the store again.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{subs: make(map[int]func(State))}
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetMappings replaces the mapping list
func (s *Store) SetMappings(mappings []integration.Mapping) {
	s.update(func(st *State) {
		st.Mappings = slices.Clone(mappings)
		st.MappingsVersion++
	})
}

// SetSettings records the stored credentials
func (s *Store) SetSettings(creds integration.Credentials) {
	s.update(func(st *State) {
		st.Settings = creds
		st.SettingsLoaded = true
	})
}

// RequestRefetch raises the refetch signal
func (s *Store) RequestRefetch() {
	s.update(func(st *State) {
		st.RefetchRequested = true
	})
}

// ConsumeRefetch lowers the refetch signal and reports whether it was raised.
func (s *Store) ConsumeRefetch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	raised := s.state.RefetchRequested
	s.state.RefetchRequested = false
	return raised
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshot()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

func (s *Store) snapshot() State {
	st := s.state
	st.Mappings = slices.Clone(s.state.Mappings)
	return st
}
