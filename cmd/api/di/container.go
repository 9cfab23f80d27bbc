package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-management-service/cmd/api/infrastructure"
	"user-management-service/internal/adapter/cache"
	"user-management-service/internal/adapter/db/postgres"
	ginhandler "user-management-service/internal/adapter/gin/handler"
	"user-management-service/internal/adapter/repository/cached"
	"user-management-service/internal/config"
	"user-management-service/internal/usecase/user"
	redisclient "user-management-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.UserUsecase
	GinHandler  *ginhandler.UserHandler
	Metrics     *prometheus.Registry
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	mailer, err := infrastructure.NewMailer(cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	var repo user.Repository = postgres.NewUserRepoPG(db, l)
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, cfg.Redis.CacheTTL, l)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
	}

	c.UserUC = user.New(repo, mailer, user.VerificationConfig{
		BaseURL:  cfg.Verify.BaseURL,
		TokenTTL: cfg.Verify.TokenTTL,
	}, l)

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	if cfg.App.MetricsEnabled {
		c.Metrics = newMetricsRegistry()
	}

	return c, nil
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
