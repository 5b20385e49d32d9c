package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/crmconsole/backend/internal/application/console"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu       sync.Mutex
	mappings []integration.Mapping
	created  []integration.Mapping
	saved    []integration.Credentials
	roles    []integration.Role
}

func (g *fakeGateway) GetSettings(context.Context) shared.Result[integration.Credentials] {
	return shared.Ok(integration.Credentials{Username: "admin@example.com"})
}

func (g *fakeGateway) SaveSettings(_ context.Context, creds integration.Credentials) shared.Result[struct{}] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = append(g.saved, creds)
	return shared.Ok(struct{}{})
}

func (g *fakeGateway) GetMappingCatalog(_ context.Context, sobject, _ string) shared.Result[integration.FieldCatalog] {
	return shared.Ok(integration.FieldCatalog{
		SourceFields: []string{sobject + ".Name", sobject + ".Email"},
		TargetFields: []string{"name", "email"},
	})
}

func (g *fakeGateway) GetMappingList(context.Context) shared.Result[[]integration.Mapping] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return shared.Ok(append([]integration.Mapping(nil), g.mappings...))
}

func (g *fakeGateway) CreateMapping(_ context.Context, m integration.Mapping) shared.Result[integration.Mapping] {
	g.mu.Lock()
	defer g.mu.Unlock()
	m.ID = uuid.New()
	g.created = append(g.created, m)
	g.mappings = append(g.mappings, m)
	return shared.Ok(m)
}

func (g *fakeGateway) UpdateMapping(_ context.Context, _ uuid.UUID, m integration.Mapping) shared.Result[integration.Mapping] {
	return shared.Ok(m)
}

func (g *fakeGateway) GetRoleCatalog(context.Context) shared.Result[[]integration.Role] {
	return shared.Ok(g.roles)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mounted(t *testing.T, canManage bool) (*Model, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{roles: []integration.Role{{ID: "r1", Name: "Admin"}, {ID: "r2", Name: "Sales"}}}
	m := New(context.Background(), gw, console.NewStore(), Options{CanManageSettings: canManage})
	t.Cleanup(m.Close)

	msg := m.mount()
	require.NoError(t, msg.(mountedMsg).err)
	m.Update(msg)
	return m, gw
}

func press(t *testing.T, m *Model, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func TestModel_MountShowsTabsAndPlaceholders(t *testing.T) {
	m, _ := mounted(t, false)

	rows := m.Shell().Selected().Rows()
	assert.Len(t, rows, 2)

	view := m.View()
	for _, rt := range integration.AllRecordTypes() {
		assert.Contains(t, view, rt.DisplayName())
	}
	assert.Contains(t, view, "Salesforce field")
}

func TestModel_PickAndSave(t *testing.T) {
	m, gw := mounted(t, false)

	press(t, m, "enter")
	require.Equal(t, modePicker, m.mode)
	press(t, m, "down", "enter")
	require.Equal(t, modeGrid, m.mode)

	press(t, m, "right", "enter", "down", "enter")
	press(t, m, "right", "space")

	row := m.Shell().Selected().Rows()[0]
	assert.Equal(t, "Account.Name", row.Source)
	assert.Equal(t, "name", row.Target)
	assert.True(t, row.Inbound)
	assert.False(t, row.Outbound)

	cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	m.Update(cmd())

	require.Len(t, gw.created, 1)
	assert.Equal(t, integration.RecordTypeAccount, gw.created[0].RecordType)
	assert.Equal(t, []integration.Association{{Source: "Account.Name", Destination: "name"}}, gw.created[0].Inbound)
	assert.Empty(t, gw.created[0].Outbound)
	assert.NotEqual(t, uuid.Nil, m.Shell().Selected().MappingID())
}

func TestModel_PickerHidesValuesTakenByOtherRows(t *testing.T) {
	m, _ := mounted(t, false)
	sc := m.Shell().Selected()
	rows := sc.Rows()
	first := rows[0]
	first.Source = "Account.Name"
	sc.UpdateRow(first.ID, first)

	press(t, m, "down", "enter")
	items := m.picker.list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, option(""), items[0])
	assert.Equal(t, option("Account.Email"), items[1])
}

func TestModel_TabSwitchLoadsScreen(t *testing.T) {
	m, _ := mounted(t, false)

	cmd := press(t, m, "tab")
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, 1, m.Shell().SelectedIndex())
	assert.True(t, m.Shell().Selected().Loaded())
	assert.Contains(t, m.View(), "Contract")
}

func TestModel_Roles(t *testing.T) {
	m, _ := mounted(t, false)
	require.NoError(t, m.Shell().Select(context.Background(), 4))

	press(t, m, "r")
	require.Equal(t, modeRoles, m.mode)
	press(t, m, "down", "space")
	press(t, m, "esc")

	assert.Equal(t, []integration.Role{{ID: "r2", Name: "Sales"}}, m.Shell().Selected().Extras().Roles)
	assert.Contains(t, m.View(), "Roles: Sales")
}

func TestModel_CutoffDate(t *testing.T) {
	m, _ := mounted(t, false)
	require.NoError(t, m.Shell().Select(context.Background(), 2))

	press(t, m, "d")
	require.Equal(t, modeDate, m.mode)
	m.date.SetValue("2024-13-45")
	press(t, m, "enter")
	assert.Equal(t, modeDate, m.mode)
	assert.Contains(t, m.status, "Invalid date")

	m.date.SetValue("2024-03-01")
	press(t, m, "enter")
	require.Equal(t, modeGrid, m.mode)
	d := m.Shell().Selected().Extras().CutoffDate
	require.NotNil(t, d)
	assert.Equal(t, "2024-03-01", d.Format(integration.CalendarDateLayout))
}

func TestModel_SettingsRequirePermission(t *testing.T) {
	m, _ := mounted(t, false)
	press(t, m, "s")
	assert.Equal(t, modeGrid, m.mode)
	assert.Contains(t, m.status, "permission")
}

func TestModel_SettingsForm(t *testing.T) {
	m, gw := mounted(t, true)

	press(t, m, "s")
	require.Equal(t, modeSettings, m.mode)
	v := m.settings
	assert.Equal(t, "admin@example.com", v.inputs[0].Value())

	v.inputs[1].SetValue("abc12345")
	v.inputs[2].SetValue("client")
	v.inputs[3].SetValue("secret")
	v.inputs[4].SetValue("https://login.salesforce.com")
	v.focus(len(v.inputs))

	cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Contains(t, v.errs, console.FieldPassword)
	assert.Contains(t, m.View(), v.errs[console.FieldPassword])

	v.inputs[1].SetValue("Abc123!@")
	cmd = press(t, m, "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())

	require.Len(t, gw.saved, 1)
	assert.Equal(t, "Abc123!@", gw.saved[0].Password)
	assert.Equal(t, modeGrid, m.mode)

	for {
		msg := m.waitForEvent()
		m.Update(msg)
		if _, ok := msg.(noticeMsg); ok {
			break
		}
	}
	assert.Equal(t, console.SettingsSavedMessage, m.status)
}
