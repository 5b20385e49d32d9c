package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/crmconsole/backend/internal/application/console"
	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/infrastructure/auth"
	"github.com/crmconsole/backend/internal/interfaces/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var noWatch bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit settings and field mappings interactively",
	Long: `Open the interactive console: one tab per record type with an editable
field mapping grid, plus the settings form when the token allows it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		client := newClient()
		store := console.NewStore()
		model := tui.New(ctx, client, store, tui.Options{
			CanManageSettings: client.HasPermission(auth.PermSettingsRead) || client.HasPermission(auth.PermSettingsWrite),
			Logger:            log,
		})
		defer model.Close()

		if !noWatch {
			go func() {
				err := client.Watch(ctx, func(change appintegration.MappingChange) {
					log.Debug("Mapping changed remotely",
						zap.String("record_type", change.RecordType.String()))
					store.RequestRefetch()
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("Mapping change stream ended", zap.Error(err))
				}
			}()
		}

		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not subscribe to mapping change events")
}
