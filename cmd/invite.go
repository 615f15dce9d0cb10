package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/config"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
)

func newInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Manage administrator invitations",
	}
	cmd.PersistentFlags().String("backend", "postgres", "invitation store (postgres|redis|mongo|memory)")

	cmd.AddCommand(newInviteCreateCmd(), newInviteListCmd())
	return cmd
}

// withInviteService loads config, opens the invitation store and runs fn.
func withInviteService(cmd *cobra.Command, fn func(service.InviteService) error) error {
	cfg, err := config.Load(configPath, config.WithFlag("invite.backend", cmd.Flags().Lookup("backend")))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stores := newBackends(cfg, logger)
	defer stores.Close()

	repo, err := stores.invitationRepository(cmd.Context())
	if err != nil {
		return fmt.Errorf("open invitation store: %w", err)
	}
	return fn(service.NewInviteService(repo, cfg.Invite.TTL, nil, logger.Named("invite")))
}

func newInviteCreateCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a one-time invitation and print its code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withInviteService(cmd, func(svc service.InviteService) error {
				inv, err := svc.Issue(cmd.Context(), email, ttl)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "code:       %s\n", inv.Code)
				fmt.Fprintf(out, "email:      %s\n", inv.Email)
				fmt.Fprintf(out, "expires_at: %s\n", inv.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "address the invitation is for")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "validity period (default invite.ttl)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newInviteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List invitations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withInviteService(cmd, func(svc service.InviteService) error {
				invitations, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tEMAIL\tCREATED\tEXPIRES\tUSED")
				for _, inv := range invitations {
					expires := "-"
					if inv.ExpiresAt != nil {
						expires = inv.ExpiresAt.UTC().Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
						inv.Code, inv.Email, inv.CreatedAt.UTC().Format(time.RFC3339), expires, inv.Used)
				}
				return tw.Flush()
			})
		},
	}
}
