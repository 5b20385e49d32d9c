// Package tui is the terminal front end of the integration console: one tab
// per record type with an editable mapping grid, plus the settings form.
package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/crmconsole/backend/internal/application/console"
	"github.com/crmconsole/backend/internal/domain/integration"
	"go.uber.org/zap"
)

type mode int

const (
	modeGrid mode = iota
	modePicker
	modeRoles
	modeDate
	modeSettings
)

type (
	mountedMsg     struct{ err error }
	loadedMsg      struct{ err error }
	savedMsg       struct{ ok bool }
	rowsChangedMsg struct{}
	noticeMsg      struct{ text string }
	submittedMsg   struct{ ok bool }
)

// Options configures the console model
type Options struct {
	CanManageSettings bool
	Logger            *zap.Logger
}

// Model is the bubbletea model of the console.
type Model struct {
	ctx    context.Context
	shell  *console.Shell
	logger *zap.Logger
	events chan tea.Msg

	mode       mode
	row, col   int
	picker     picker
	roleCursor int
	date       textinput.Model
	settings   *settingsView

	status   string
	err      error
	width    int
	height   int
	quitting bool
}

// New builds the console over gateway and store. The returned model owns a
// Shell with a screen per record type.
func New(ctx context.Context, gateway console.Gateway, store *console.Store, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:    ctx,
		logger: logger,
		events: make(chan tea.Msg, 16),
		width:  100,
		height: 24,
	}
	m.shell = console.NewShell(gateway, store, console.ShellOptions{
		CanManageSettings: opts.CanManageSettings,
		Notifier:          console.NotifierFunc(func(text string) { m.emit(noticeMsg{text: text}) }),
		Logger:            logger,
	})
	for _, sc := range m.shell.Screens() {
		sc.OnChange(func() { m.emit(rowsChangedMsg{}) })
	}

	m.date = textinput.New()
	m.date.Placeholder = integration.CalendarDateLayout
	m.date.CharLimit = len(integration.CalendarDateLayout)
	return m
}

// Shell returns the underlying tab shell
func (m *Model) Shell() *console.Shell {
	return m.shell
}

// Close detaches the shell from the store
func (m *Model) Close() {
	m.shell.Close()
}

func (m *Model) emit(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) waitForEvent() tea.Msg {
	select {
	case msg := <-m.events:
		return msg
	case <-m.ctx.Done():
		return nil
	}
}

func (m *Model) mount() tea.Msg {
	return mountedMsg{err: m.shell.Mount(m.ctx)}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.mount, m.waitForEvent)
}

func (m *Model) screen() *console.Screen {
	return m.shell.Selected()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.mode == modePicker {
			m.picker.list.SetSize(msg.Width, msg.Height-2)
		}
		return m, nil

	case mountedMsg:
		m.err = msg.err
		if msg.err != nil {
			m.logger.Warn("console mount failed", zap.Error(msg.err))
		}
		return m, nil

	case loadedMsg:
		m.err = msg.err
		if msg.err != nil {
			m.logger.Debug("tab load failed", zap.Error(msg.err))
		}
		m.clampCursor()
		return m, nil

	case rowsChangedMsg:
		m.clampCursor()
		return m, m.waitForEvent

	case noticeMsg:
		m.status = msg.text
		return m, m.waitForEvent

	case savedMsg:
		m.status = ""
		return m, nil

	case submittedMsg:
		if msg.ok {
			m.mode = modeGrid
			m.settings = nil
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeRoles:
			return m.updateRoles(msg)
		case modeDate:
			return m.updateDate(msg)
		case modeSettings:
			return m.updateSettings(msg)
		}
		return m.updateGrid(msg)
	}

	switch m.mode {
	case modePicker:
		var cmd tea.Cmd
		m.picker.list, cmd = m.picker.list.Update(msg)
		return m, cmd
	case modeDate:
		var cmd tea.Cmd
		m.date, cmd = m.date.Update(msg)
		return m, cmd
	case modeSettings:
		return m, m.settings.update(msg)
	}
	return m, nil
}

func (m *Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sc := m.screen()
	rows := sc.Rows()

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m, m.selectTab(m.shell.SelectedIndex() + 1)
	case "shift+tab":
		return m, m.selectTab(m.shell.SelectedIndex() - 1)
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(rows)-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < columnCount-1 {
			m.col++
		}
	case "enter", " ":
		if m.row >= len(rows) {
			return m, nil
		}
		r := rows[m.row]
		if key, ok := columnKey(m.col); ok {
			values := sc.AvailableOptions(r.ID, key)
			current := r.Source
			if key == console.KeyTarget {
				current = r.Target
			}
			m.picker = newPicker(r.ID, key, values, current, m.width, m.height-2)
			m.mode = modePicker
			return m, nil
		}
		if m.col == colInbound {
			r.Inbound = !r.Inbound
		} else {
			r.Outbound = !r.Outbound
		}
		sc.UpdateRow(r.ID, r)
	case "backspace", "delete":
		if m.row >= len(rows) {
			return m, nil
		}
		r := rows[m.row]
		switch m.col {
		case colSource:
			r.Source = ""
		case colTarget:
			r.Target = ""
		default:
			return m, nil
		}
		sc.UpdateRow(r.ID, r)
	case "ctrl+s":
		m.status = "Saving " + sc.RecordType().DisplayName() + " mapping…"
		return m, func() tea.Msg { return savedMsg{ok: sc.Save(m.ctx)} }
	case "r":
		if sc.RecordType() == integration.RecordTypeUser {
			m.roleCursor = 0
			m.mode = modeRoles
		}
	case "d":
		if sc.RecordType() == integration.RecordTypeOpportunity {
			value := ""
			if d := sc.Extras().CutoffDate; d != nil {
				value = d.Format(integration.CalendarDateLayout)
			}
			m.date.SetValue(value)
			m.mode = modeDate
			return m, m.date.Focus()
		}
	case "s":
		form, err := m.shell.SettingsForm()
		if err != nil {
			m.status = "Settings require the integration:settings:read permission"
			return m, nil
		}
		m.settings = newSettingsView(form)
		m.mode = modeSettings
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) selectTab(index int) tea.Cmd {
	n := len(m.shell.Screens())
	index = (index%n + n) % n
	m.row, m.col = 0, 0
	return func() tea.Msg {
		return loadedMsg{err: m.shell.Select(m.ctx, index)}
	}
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.picker.filtering() {
		switch msg.String() {
		case "esc":
			m.mode = modeGrid
			return m, nil
		case "enter":
			m.applyChoice()
			m.mode = modeGrid
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker.list, cmd = m.picker.list.Update(msg)
	return m, cmd
}

func (m *Model) applyChoice() {
	value, ok := m.picker.choice()
	if !ok {
		return
	}
	sc := m.screen()
	for _, r := range sc.Rows() {
		if r.ID != m.picker.rowID {
			continue
		}
		if m.picker.key == console.KeyTarget {
			r.Target = value
		} else {
			r.Source = value
		}
		sc.UpdateRow(r.ID, r)
		return
	}
}

func (m *Model) updateRoles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sc := m.screen()
	catalog := sc.RoleCatalog()

	switch msg.String() {
	case "esc", "enter", "q":
		m.mode = modeGrid
	case "up", "k":
		if m.roleCursor > 0 {
			m.roleCursor--
		}
	case "down", "j":
		if m.roleCursor < len(catalog)-1 {
			m.roleCursor++
		}
	case " ", "x":
		if m.roleCursor >= len(catalog) {
			return m, nil
		}
		ids := integration.RoleIDs(sc.Extras().Roles)
		id := catalog[m.roleCursor].ID
		if i := slices.Index(ids, id); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
		} else {
			ids = append(ids, id)
		}
		sc.SetRoles(integration.ResolveRoles(catalog, ids))
	}
	return m, nil
}

func (m *Model) updateDate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.date.Blur()
		m.mode = modeGrid
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.date.Value())
		sc := m.screen()
		if value == "" {
			sc.SetCutoffDate(nil)
		} else {
			d := integration.ParseCalendarDate(value)
			if d == nil {
				m.status = "Invalid date, expected " + integration.CalendarDateLayout
				return m, nil
			}
			sc.SetCutoffDate(d)
		}
		m.status = ""
		m.date.Blur()
		m.mode = modeGrid
		return m, nil
	}
	var cmd tea.Cmd
	m.date, cmd = m.date.Update(msg)
	return m, cmd
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.settings
	switch msg.String() {
	case "esc":
		m.mode = modeGrid
		m.settings = nil
		return m, nil
	case "tab", "down":
		return m, v.move(1)
	case "shift+tab", "up":
		return m, v.move(-1)
	case "enter":
		if !v.onButton() {
			return m, v.move(1)
		}
		if errs := v.sync(); len(errs) > 0 {
			return m, nil
		}
		form := v.form
		return m, func() tea.Msg { return submittedMsg{ok: form.Submit(m.ctx)} }
	}
	return m, v.update(msg)
}

func (m *Model) clampCursor() {
	n := len(m.screen().Rows())
	if m.row >= n {
		m.row = max(n-1, 0)
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modePicker:
		return m.picker.list.View()
	case modeSettings:
		return m.settings.view()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Salesforce integration"))
	b.WriteString("\n\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	sc := m.screen()
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(renderGrid(sc.Rows(), m.row, m.col))

	if extras := renderExtras(sc.RecordType(), sc.Extras()); extras != "" {
		b.WriteString("\n" + extras + "\n")
	}

	switch m.mode {
	case modeRoles:
		b.WriteString("\n" + m.viewRoles(sc))
	case modeDate:
		b.WriteString("\nCutoff date: " + m.date.View() + "\n")
	}

	b.WriteByte('\n')
	if sc.Loading() {
		b.WriteString(blurredStyle.Render("loading…") + " ")
	}
	if m.status != "" {
		b.WriteString(successStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help(sc.RecordType())))
	return b.String()
}

func (m *Model) viewTabs() string {
	selected := m.shell.SelectedIndex()
	tabs := make([]string, 0, len(m.shell.Screens()))
	for i, sc := range m.shell.Screens() {
		style := tabStyle
		if i == selected {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(sc.RecordType().DisplayName()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) viewRoles(sc *console.Screen) string {
	chosen := integration.RoleIDs(sc.Extras().Roles)
	var b strings.Builder
	for i, r := range sc.RoleCatalog() {
		line := checkbox(slices.Contains(chosen, r.ID)) + " " + r.Name
		if i == m.roleCursor {
			line = focusedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if b.Len() == 0 {
		return emptyStyle.Render("no roles available") + "\n"
	}
	return b.String()
}

func (m *Model) help(rt integration.RecordType) string {
	parts := []string{"tab: next type", "arrows: move", "enter: choose/toggle", "ctrl+s: save"}
	switch rt {
	case integration.RecordTypeUser:
		parts = append(parts, "r: roles")
	case integration.RecordTypeOpportunity:
		parts = append(parts, "d: cutoff date")
	}
	return strings.Join(append(parts, "s: settings", "q: quit"), " • ")
}
