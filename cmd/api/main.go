package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-social-graph/internal/core/auth"
	"go-gin-social-graph/internal/core/cache"
	"go-gin-social-graph/internal/core/config"
	"go-gin-social-graph/internal/core/database"
	"go-gin-social-graph/internal/core/logger"
	"go-gin-social-graph/internal/core/server"
	"go-gin-social-graph/internal/repo"
	"go-gin-social-graph/internal/service"
	"go-gin-social-graph/internal/transport/http/handler"
	"go-gin-social-graph/internal/transport/http/router"
	"go-gin-social-graph/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
		Leeway: cfg.JWT.Leeway(),
	}
	hasher := utils.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.HashWorkers)

	// a nil *cache.Cache must not become a non-nil cache.Store
	var profiles cache.Store
	if cfg.Redis.Enable {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unreachable, profile reads fall through to the database", zap.Error(err))
		}
		cancel()
		defer func() { _ = c.Close() }()
		profiles = c
		log.Info("profile cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.ProfileTTL()))
	}

	users := repo.NewUserRepo(db, cfg.DB.QueryTimeout())
	follows := repo.NewFollowRepo(db, cfg.DB.QueryTimeout())
	userH := handler.NewUserHandler(
		service.NewAuthService(users, hasher, jwter, log),
		service.NewUserService(users, hasher, profiles, cfg.Redis.ProfileTTL(), log),
		service.NewSocialService(users, follows, profiles, log),
	)

	r := router.NewAPIEngine(router.Deps{
		Log:      log,
		HTTP:     cfg.App.HTTP,
		Verifier: jwter,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Modules: []router.Module{userH},
	})

	srv := server.BuildServer(cfg.App.HTTP, r, log)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("social graph api starting",
		zap.String("addr", srv.Addr),
		zap.String("health", baseURL+"/health"),
		zap.String("users", baseURL+"/api/v1/users"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("social graph api start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("social graph api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
