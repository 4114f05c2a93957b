package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-social-graph/internal/core/auth"
	"go-gin-social-graph/internal/core/config"
	"go-gin-social-graph/internal/core/database"
	"go-gin-social-graph/internal/core/logger"
	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/internal/repo"
	"go-gin-social-graph/internal/service"
	"go-gin-social-graph/pkg/utils"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func open(configPath string) (*env, func(), error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, flush := logger.New(cfg.Log)
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		flush()
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	e := &env{cfg: cfg, log: log, db: db}
	return e, func() { e.close(); flush() }, nil
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Operator tasks for the social graph api",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "config file (yaml)")
	root.AddCommand(newMigrateCmd(&configPath), newCreateAdminCmd(&configPath))
	return root
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed the role table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, done, err := open(*configPath)
			if err != nil {
				return err
			}
			defer done()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := database.Migrate(ctx, e.db); err != nil {
				return err
			}
			e.log.Info("migration done", zap.String("driver", e.cfg.DB.Driver))
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func newCreateAdminCmd(configPath *string) *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an ADMIN account",
		Long: `Registers an ADMIN account. Public registration cannot create admins.

	admin create-admin --email root@example.com --password '...'

The password may also come from APP_ADMIN_PASSWORD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("APP_ADMIN_PASSWORD")
			}
			if strings.TrimSpace(in.Email) == "" || in.Password == "" {
				return errors.New("--email and --password are required")
			}
			e, done, err := open(*configPath)
			if err != nil {
				return err
			}
			defer done()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := database.Migrate(ctx, e.db); err != nil {
				return err
			}
			users := repo.NewUserRepo(e.db, e.cfg.DB.QueryTimeout())
			hasher := utils.NewPasswordHasher(e.cfg.Auth.BcryptCost, e.cfg.Auth.HashWorkers)
			tokens := &auth.JWTer{Secret: []byte(e.cfg.JWT.Secret), Issuer: e.cfg.JWT.Issuer, TTL: e.cfg.JWT.TTL()}

			u, err := service.NewAuthService(users, hasher, tokens, e.log).RegisterAdmin(ctx, in)
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return fmt.Errorf("%s: %w", utils.NormalizeEmail(in.Email), err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %d <%s>\n", u.ID, u.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "admin email")
	f.StringVar(&in.Password, "password", "", "admin password")
	f.StringVar(&in.FirstName, "first-name", "Admin", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	return cmd
}
