package main

import (
	"fmt"
	"os"

	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/crmconsole/backend/internal/infrastructure/crmapi"
	"github.com/crmconsole/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	apiURL     string
	apiToken   string
	tenantID   string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Salesforce integration console",
	Long: `console manages the Salesforce integration of a tenant: credentials,
and field mappings for Account, Contract, Opportunity, Quote, User and
Org Hierarchy records.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.Console.APIBaseURL = apiURL
		}
		if apiToken != "" {
			cfg.Console.Token = apiToken
		}
		if tenantID != "" {
			cfg.Console.TenantID = tenantID
		}

		logCfg := &logger.Config{
			Level:  cfg.Log.Level,
			Format: "console",
			Output: "stderr",
		}
		if cmd.Name() == tuiCmd.Name() {
			logCfg.Output = cfg.Log.Output
			log, err = logger.NewForTerminalUI(logCfg)
		} else {
			log, err = logger.New(logCfg)
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *crmapi.Client {
	return crmapi.New(cfg.Console, log)
}

func printf(cmd *cobra.Command, format string, a ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL, overrides console.api_base_url")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "bearer token, overrides console.token")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant ID sent as X-Tenant-ID")
}
