package main

import (
	"encoding/json"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect integration settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored Salesforce credentials",
	Long:  `Print the stored Salesforce credentials. Secrets are masked unless the token carries integration:settings:read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := newClient().GetSettings(cmd.Context()).Unwrap()
		if err != nil {
			return err
		}
		if settingsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(creds)
		}
		if creds.IsZero() {
			printf(cmd, "Integration is not configured\n")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if col == 0 {
					return labelStyle
				}
				return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			}).
			Rows(
				[]string{"Username", creds.Username},
				[]string{"Password", creds.Password},
				[]string{"Client ID", creds.ClientID},
				[]string{"Client secret", creds.ClientSecret},
				[]string{"URL", creds.URL},
			)
		printf(cmd, "%s\n", t.Render())
		return nil
	},
}

var labelStyle = lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsShowCmd.Flags().BoolVar(&settingsJSON, "json", false, "print as JSON")
}
