package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/auth"
	"github.com/iho/coinledger/internal/infrastructure/postgres"
)

var errNotConfirmed = errors.New("refusing to run a destructive operation without --yes")

func newAccountCmd(opts *options) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	accountCmd.AddCommand(&cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account, creating it on first access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil)
		},
	})

	return accountCmd
}

func newEventsCmd(opts *options) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Ledger event operations",
	}

	transition := func(use, short, action string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <event-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := "/api/v1/ledger-events/" + url.PathEscape(args[0]) + "/" + action
				return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodPost, path, nil)
			},
		}
	}

	var accountID, status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger events",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if accountID != "" {
				q.Set("accountId", accountID)
			}
			if status != "" {
				q.Set("status", status)
			}
			path := "/api/v1/ledger-events/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().StringVar(&accountID, "account", "", "Filter by account ID")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")

	eventsCmd.AddCommand(
		transition("approve", "Approve a pending event", "approve"),
		transition("reject", "Reject a pending event", "reject"),
		listCmd,
	)

	return eventsCmd
}

func newAdminCmd(opts *options) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Bulk administrative operations",
	}

	bulk := func(use, short string, withAmount bool) *cobra.Command {
		var yes bool
		var amount string
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if !yes {
					return errNotConfirmed
				}
				body := map[string]any{"confirm": true}
				if withAmount {
					body["amount"] = amount
				}
				return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodPost, "/api/v1/admin/"+use, body)
			},
		}
		cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the operation")
		if withAmount {
			cmd.Flags().StringVar(&amount, "amount", "", "USD amount applied to every account")
			_ = cmd.MarkFlagRequired("amount")
		}
		return cmd
	}

	var yes bool
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every ledger event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodDelete, "/api/v1/admin/ledger-events?confirm=true", nil)
		},
	}
	purgeCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the operation")

	adminCmd.AddCommand(
		bulk("global-profit", "Credit profit to every account", true),
		bulk("global-fee", "Charge a fee on every account", true),
		bulk("reset-test", "Zero all test accounts", false),
		bulk("reset-all", "Zero every account", false),
		bulk("bulk-approve", "Approve every pending deposit", false),
		bulk("bulk-reject", "Reject every pending deposit", false),
		purgeCmd,
	)

	return adminCmd
}

func newJobsCmd(opts *options) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Batch job operations",
	}

	jobsCmd.AddCommand(
		&cobra.Command{
			Use:   "get <job-id>",
			Short: "Show a batch job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, "/api/v1/admin/jobs/"+url.PathEscape(args[0]), nil)
			},
		},
		&cobra.Command{
			Use:   "resume <job-id>",
			Short: "Resume an interrupted batch job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodPost, "/api/v1/admin/jobs/"+url.PathEscape(args[0])+"/resume", nil)
			},
		},
	)

	return jobsCmd
}

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Compare recorded balances with the ledger",
		Long:  `Reconciles one account, or prints the report for all accounts when no ID is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/admin/reconciliation"
			if len(args) == 1 {
				path = "/api/v1/admin/accounts/" + url.PathEscape(args[0]) + "/reconcile"
			}
			return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, path, nil)
		},
	}
}

func newPricesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prices [symbol...]",
		Short: "Show spot prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/market/prices"
			if len(args) > 0 {
				path += "?symbols=" + url.QueryEscape(strings.ToUpper(strings.Join(args, ",")))
			}
			return opts.do(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, path, nil)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject, email, role, secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT with the shared secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or $JWT_SECRET)")
			}
			if !domain.Role(role).IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{
				ID:    subject,
				Email: email,
				Role:  domain.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "User ID placed in the token")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "Role claim (admin or user)")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret (defaults to $JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, path string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL (defaults to $DATABASE_URL)")
	migrateCmd.PersistentFlags().StringVar(&path, "path", "migrations", "Directory holding the migration files")

	run := func(fn func(databaseURL, path string, logger zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or $DATABASE_URL is required")
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
			return fn(databaseURL, path, logger)
		}
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrationsDown),
		},
	)

	return migrateCmd
}
