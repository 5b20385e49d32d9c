package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/crmconsole/backend/internal/application/console"
	"github.com/crmconsole/backend/internal/domain/integration"
)

// Grid columns in display order.
const (
	colSource = iota
	colTarget
	colInbound
	colOutbound
	columnCount
)

var columnTitles = [columnCount]string{"Salesforce field", "Internal field", "Inbound", "Outbound"}

func columnKey(col int) (console.FieldKey, bool) {
	switch col {
	case colSource:
		return console.KeySource, true
	case colTarget:
		return console.KeyTarget, true
	}
	return 0, false
}

func columnWidth(col int) int {
	if col == colSource || col == colTarget {
		return fieldColumnWidth
	}
	return flagColumnWidth
}

func cellText(r console.Row, col int) string {
	switch col {
	case colSource:
		return r.Source
	case colTarget:
		return r.Target
	case colInbound:
		return checkbox(r.Inbound)
	case colOutbound:
		return checkbox(r.Outbound)
	}
	return ""
}

func checkbox(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

// renderGrid draws rows with the cursor cell highlighted.
func renderGrid(rows []console.Row, cursorRow, cursorCol int) string {
	var b strings.Builder

	header := make([]string, columnCount)
	for col := range columnCount {
		header[col] = headerStyle.Width(columnWidth(col)).Render(columnTitles[col])
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteByte('\n')

	if len(rows) == 0 {
		b.WriteString(emptyStyle.Render("no fields in catalog"))
		b.WriteByte('\n')
		return b.String()
	}

	for i, r := range rows {
		cells := make([]string, columnCount)
		for col := range columnCount {
			text := cellText(r, col)
			style := cellStyle
			if text == "" {
				text = "-"
				style = emptyStyle
			}
			if i == cursorRow && col == cursorCol {
				style = cursorStyle
			}
			cells[col] = style.Width(columnWidth(col)).Render(truncate(text, columnWidth(col)-1))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderExtras(rt integration.RecordType, extras console.Extras) string {
	switch rt {
	case integration.RecordTypeUser:
		names := make([]string, 0, len(extras.Roles))
		for _, r := range extras.Roles {
			names = append(names, r.Name)
		}
		if len(names) == 0 {
			return "Roles: " + emptyStyle.Render("none")
		}
		return "Roles: " + strings.Join(names, ", ")
	case integration.RecordTypeOpportunity:
		if extras.CutoffDate == nil {
			return "Cutoff date: " + emptyStyle.Render("none")
		}
		return "Cutoff date: " + extras.CutoffDate.Format(integration.CalendarDateLayout)
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
