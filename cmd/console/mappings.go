package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/spf13/cobra"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect field mappings",
}

var mappingsShowCmd = &cobra.Command{
	Use:   "show <record-type>",
	Short: "Print the saved mapping of a record type",
	Long: `Print the saved mapping of a record type. Record types are account,
contract, opportunity, quote, user and org-hierarchy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := integration.ParseRecordType(args[0])
		if err != nil {
			return err
		}
		mappings, err := newClient().GetMappingList(cmd.Context()).Unwrap()
		if err != nil {
			return err
		}

		var found *integration.Mapping
		for i := range mappings {
			if mappings[i].RecordType == rt {
				found = &mappings[i]
				break
			}
		}
		if found == nil {
			printf(cmd, "No %s mapping saved\n", rt.DisplayName())
			return nil
		}

		printf(cmd, "%s mapping %s\n", rt.DisplayName(), found.ID)
		printf(cmd, "%s\n", associationTable(found))
		switch c := found.Config.(type) {
		case integration.UserConfig:
			printf(cmd, "Role IDs: %v\n", c.RoleIDs)
		case integration.OpportunityConfig:
			if c.CutoffDate != nil {
				printf(cmd, "Cutoff date: %s\n", c.CutoffDate.Format(integration.CalendarDateLayout))
			}
		}
		return nil
	},
}

func associationTable(m *integration.Mapping) string {
	rows := make([][]string, 0, len(m.Inbound)+len(m.Outbound))
	for _, a := range m.Inbound {
		rows = append(rows, []string{"inbound", a.Source, a.Destination})
	}
	for _, a := range m.Outbound {
		rows = append(rows, []string{"outbound", a.Source, a.Destination})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Direction", "Source", "Destination").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return labelStyle
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Rows(rows...).
		Render()
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsShowCmd)
}
