package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/crmconsole/backend/internal/application/console"
	"github.com/google/uuid"
)

// option is one selectable catalog value. The empty option clears the cell.
type option string

func (o option) FilterValue() string { return string(o) }
func (o option) Description() string { return "" }
func (o option) Title() string {
	if o == "" {
		return "(none)"
	}
	return string(o)
}

// picker is the searchable select opened on a field cell.
type picker struct {
	list  list.Model
	rowID uuid.UUID
	key   console.FieldKey
}

func newPicker(rowID uuid.UUID, key console.FieldKey, values []string, current string, width, height int) picker {
	items := make([]list.Item, 0, len(values)+1)
	items = append(items, option(""))
	selected := 0
	for _, v := range values {
		if v == current {
			selected = len(items)
		}
		items = append(items, option(v))
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, width, height)
	l.Title = "Choose " + key.String() + " field"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	l.Select(selected)

	return picker{list: l, rowID: rowID, key: key}
}

func (p picker) filtering() bool {
	return p.list.FilterState() == list.Filtering
}

func (p picker) choice() (string, bool) {
	o, ok := p.list.SelectedItem().(option)
	return string(o), ok
}
