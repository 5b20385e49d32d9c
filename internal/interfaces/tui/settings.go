package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/crmconsole/backend/internal/application/console"
)

var settingsLabels = map[string]string{
	console.FieldUsername:     "Username",
	console.FieldPassword:     "Password",
	console.FieldClientID:     "Client ID",
	console.FieldClientSecret: "Client secret",
	console.FieldURL:          "Instance URL",
}

// settingsView edits the integration credentials through a SettingsForm.
type settingsView struct {
	form       *console.SettingsForm
	inputs     []textinput.Model
	focusIndex int
	errs       console.FieldErrors
}

func newSettingsView(form *console.SettingsForm) *settingsView {
	values := form.Values()
	v := &settingsView{
		form:   form,
		inputs: make([]textinput.Model, len(console.SettingsFields)),
		errs:   console.FieldErrors{},
	}
	for i, field := range console.SettingsFields {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 512
		t.SetValue(values.Get(field))
		switch field {
		case console.FieldPassword, console.FieldClientSecret:
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		case console.FieldURL:
			t.Placeholder = "https://login.salesforce.com"
		}
		v.inputs[i] = t
	}
	v.focus(0)
	return v
}

// onButton reports whether the submit button has focus
func (v *settingsView) onButton() bool {
	return v.focusIndex == len(v.inputs)
}

func (v *settingsView) move(delta int) tea.Cmd {
	next := v.focusIndex + delta
	if next > len(v.inputs) {
		next = 0
	} else if next < 0 {
		next = len(v.inputs)
	}
	return v.focus(next)
}

func (v *settingsView) focus(index int) tea.Cmd {
	v.focusIndex = index
	var cmd tea.Cmd
	for i := range v.inputs {
		if i == index {
			cmd = v.inputs[i].Focus()
			v.inputs[i].PromptStyle = focusedStyle
			v.inputs[i].TextStyle = focusedStyle
			continue
		}
		v.inputs[i].Blur()
		v.inputs[i].PromptStyle = noStyle
		v.inputs[i].TextStyle = noStyle
	}
	return cmd
}

// sync copies the inputs into the form and validates it.
func (v *settingsView) sync() console.FieldErrors {
	for i, field := range console.SettingsFields {
		v.form.Set(field, strings.TrimSpace(v.inputs[i].Value()))
	}
	v.errs = v.form.Validate()
	return v.errs
}

func (v *settingsView) update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(v.inputs))
	for i := range v.inputs {
		v.inputs[i], cmds[i] = v.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (v *settingsView) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Salesforce integration settings"))
	b.WriteString("\n\n")
	for i, field := range console.SettingsFields {
		fmt.Fprintf(&b, " %s\n %s\n", blurredStyle.Render(settingsLabels[field]+":"), v.inputs[i].View())
		if msg, ok := v.errs[field]; ok {
			b.WriteString(" " + errorStyle.Render(msg) + "\n")
		}
		b.WriteByte('\n')
	}
	if msg, ok := v.errs["form"]; ok {
		b.WriteString(" " + errorStyle.Render(msg) + "\n")
	}

	button := blurredButton
	if v.onButton() {
		button = focusedButton
	}
	if v.form.Loading() {
		button += blurredStyle.Render(" saving…")
	}
	fmt.Fprintf(&b, "\n %s\n\n", button)
	b.WriteString(helpStyle.Render("tab/shift+tab: navigate • enter: save • esc: back"))
	return b.String()
}
