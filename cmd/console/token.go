package main

import (
	"errors"
	"time"

	"github.com/crmconsole/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenOpts struct {
	tenant      string
	user        string
	username    string
	permissions []string
	ttl         time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Mint an access token signed with the server's jwt.secret. Meant for local
development against a server sharing the same configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWT.Secret == "" {
			return errors.New("jwt.secret is not configured")
		}
		tenant, err := uuid.Parse(tokenOpts.tenant)
		if err != nil {
			return err
		}
		user := uuid.New()
		if tokenOpts.user != "" {
			if user, err = uuid.Parse(tokenOpts.user); err != nil {
				return err
			}
		}

		jwtCfg := cfg.JWT
		if tokenOpts.ttl > 0 {
			jwtCfg.AccessTokenExpiration = tokenOpts.ttl
		}
		token, expiresAt, err := auth.NewJWTService(jwtCfg).Issue(auth.TokenInput{
			TenantID:    tenant,
			UserID:      user,
			Username:    tokenOpts.username,
			Permissions: tokenOpts.permissions,
		})
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", token)
		cmd.PrintErrf("expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	f := tokenCmd.Flags()
	f.StringVar(&tokenOpts.tenant, "tenant-id", "", "tenant UUID (required)")
	f.StringVar(&tokenOpts.user, "user-id", "", "user UUID (default: random)")
	f.StringVar(&tokenOpts.username, "username", "console", "username claim")
	f.StringSliceVar(&tokenOpts.permissions, "perm", auth.AllPermissions, "permissions to grant")
	f.DurationVar(&tokenOpts.ttl, "ttl", 0, "token lifetime (default: jwt.access_token_expiration)")
	_ = tokenCmd.MarkFlagRequired("tenant-id")
}
