package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alphalabs/mobile-api/internal/config"
	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type app struct {
	cfg config.Config
	db  *repository.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var driver, dsn string
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Operational tasks for the AlphaLabs Mobile API database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if driver != "" {
				cfg.DatabaseDriver = driver
			}
			if dsn != "" {
				cfg.DatabaseDSN = dsn
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			a.cfg, a.db = cfg, db
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&driver, "driver", "", "database driver: mysql|postgres|sqlite (env DATABASE_DRIVER)")
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "database DSN (env DATABASE_DSN)")

	root.AddCommand(a.migrateCmd(), a.provisionCmd(), a.seedCmd())
	return root
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func (a *app) provisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Migrate and ensure the default client exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}

			client, err := a.provisioner().EnsureDefaultClient(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client %d (%s) ready\n", client.ID, client.Name)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var email, name, password string
	var generate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the test user if it does not exist",
		Long: `Create a verified user with the test identity. Flags override the
TEST_USER_EMAIL, TEST_USER_NAME and TEST_USER_PASSWORD environment values.

Examples:
  admin seed
  admin seed --email demo@alphalabs.com --password changeme
  admin seed --email qa@alphalabs.com --generate-password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}

			p := a.provisioner()
			if _, err := p.EnsureDefaultClient(ctx); err != nil {
				return err
			}

			if generate {
				pw, err := crypto.RandomPassword(20)
				if err != nil {
					return err
				}
				password = pw
			}

			identity := service.TestIdentity{
				Email:    firstNonEmpty(email, a.cfg.TestUserEmail),
				Name:     firstNonEmpty(name, a.cfg.TestUserName),
				Password: firstNonEmpty(password, a.cfg.TestUserPassword),
			}
			user, created, err := p.SeedTestUser(ctx, identity)
			if err != nil {
				return err
			}

			switch {
			case created && generate:
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> with password %s\n", user.ID, user.Email, identity.Password)
			case created:
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s>\n", user.ID, user.Email)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "user %d <%s> already exists\n", user.ID, user.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the seeded user")
	cmd.Flags().StringVar(&name, "name", "", "display name of the seeded user")
	cmd.Flags().StringVar(&password, "password", "", "password of the seeded user")
	cmd.Flags().BoolVar(&generate, "generate-password", false, "use a random password and print it")
	cmd.MarkFlagsMutuallyExclusive("password", "generate-password")
	return cmd
}

func (a *app) provisioner() *service.Provisioner {
	return service.NewProvisioner(
		repository.NewClientRepository(a.db),
		repository.NewUserRepository(a.db),
		crypto.NewPasswordHasher(a.cfg.BcryptCost),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
