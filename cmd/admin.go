package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/config"
	jwtpkg "github.com/MAVERICK-VF142/Drx.MediMate/pkg/jwt"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator utilities",
	}
	cmd.AddCommand(newAdminTokenCmd())
	return cmd
}

func newAdminTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for an administrator listed in admin.user_ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.JWT.SigningKey == "" {
				return errors.New("jwt.signing_key must be set")
			}

			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.JWT.AccessTokenTTL
			}

			token, err := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, ttl).GenerateAccessToken(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "administrator UUID")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default jwt.access_token_ttl)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
