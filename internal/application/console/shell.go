package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/crmconsole/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// ShellOptions configures a Shell
type ShellOptions struct {
	// CanManageSettings gates the settings fetch and the settings form.
	CanManageSettings bool
	Notifier          Notifier
	Logger            *zap.Logger
}

// Shell composes one Screen per record type and tracks the selected tab.
type Shell struct {
	gateway Gateway
	store   *Store
	opts    ShellOptions
	logger  *zap.Logger
	screens []*Screen

	mu          sync.Mutex
	selected    int
	ctx         context.Context
	unsubscribe func()
}

// ErrSettingsForbidden is returned when the settings form is requested without permission.
var ErrSettingsForbidden = errors.New("console: not permitted to manage settings")

// NewShell creates the shell with a screen for each record type.
func NewShell(gateway Gateway, store *Store, opts ShellOptions) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		gateway: gateway,
		store:   store,
		opts:    opts,
		logger:  logger,
		ctx:     context.Background(),
	}
	for _, rt := range integration.AllRecordTypes() {
		s.screens = append(s.screens, NewScreen(rt, gateway, store, logger))
	}
	return s
}

// Mount fetches settings (when permitted) and the mapping list, starts
// listening for refetch requests and loads the selected tab.
func (s *Shell) Mount(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if s.opts.CanManageSettings {
		if creds, err := s.gateway.GetSettings(ctx).Unwrap(); err != nil {
			s.logger.Warn("Failed to load integration settings", zap.Error(err))
		} else {
			s.store.SetSettings(creds)
		}
	}

	s.fetchMappings(ctx)
	s.unsubscribe = s.store.Subscribe(s.onStore)

	return s.Selected().Load(ctx)
}

// Close detaches the shell and its screens from the store
func (s *Shell) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	for _, sc := range s.screens {
		sc.Close()
	}
}

// Screens returns the screens in tab order
func (s *Shell) Screens() []*Screen {
	return s.screens
}

// Selected returns the selected screen
func (s *Shell) Selected() *Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screens[s.selected]
}

// SelectedIndex returns the selected tab index
func (s *Shell) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select switches tabs and loads the screen on first visit. Stale responses
// from a previously selected tab are not cancelled.
func (s *Shell) Select(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.screens) {
		return fmt.Errorf("console: tab %d out of range", index)
	}
	s.mu.Lock()
	s.selected = index
	sc := s.screens[index]
	s.mu.Unlock()

	if sc.Loaded() {
		return nil
	}
	return sc.Load(ctx)
}

// Screen returns the screen of a record type
func (s *Shell) Screen(rt integration.RecordType) (*Screen, bool) {
	for _, sc := range s.screens {
		if sc.RecordType() == rt {
			return sc, true
		}
	}
	return nil, false
}

// SettingsForm builds a form pre-populated from the stored settings.
func (s *Shell) SettingsForm() (*SettingsForm, error) {
	if !s.opts.CanManageSettings {
		return nil, ErrSettingsForbidden
	}
	return NewSettingsForm(s.gateway, s.store, s.opts.Notifier, s.logger), nil
}

func (s *Shell) onStore(st State) {
	if !st.RefetchRequested || !s.store.ConsumeRefetch() {
		return
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.fetchMappings(ctx)
}

func (s *Shell) fetchMappings(ctx context.Context) {
	mappings, err := s.gateway.GetMappingList(ctx).Unwrap()
	if err != nil {
		s.logger.Warn("Failed to load mapping list", zap.Error(err))
		return
	}
	s.store.SetMappings(mappings)
}
