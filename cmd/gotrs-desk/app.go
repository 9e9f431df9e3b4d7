package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/gotrs-io/gotrs-desk/internal/auth"
	"github.com/gotrs-io/gotrs-desk/internal/config"
	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/logging"
	"github.com/gotrs-io/gotrs-desk/internal/metrics"
	"github.com/gotrs-io/gotrs-desk/internal/repository"
	"github.com/gotrs-io/gotrs-desk/internal/service"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// app holds the collaborators shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	qb     *database.QueryBuilder
	redis  *redis.Client
}

func loadApp() (*app, error) {
	load := func() error { return config.Load(configDir) }
	if configFile != "" {
		load = func() error { return config.LoadFromFile(configFile) }
	}
	if err := load(); err != nil {
		return nil, err
	}
	cfg := config.Get()

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) openDatabase(ctx context.Context) error {
	db := a.cfg.Database
	conn, err := database.Open(ctx, db.Driver, db.GetDSN(), database.PoolOptions{
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	qb, err := database.NewQueryBuilder(conn, db.Driver)
	if err != nil {
		conn.Close()
		return err
	}
	a.qb = qb
	a.logger.Info("database connected", "driver", qb.Driver())
	return nil
}

// openRedis connects the revoked-session store when Redis is enabled.
func (a *app) openRedis(ctx context.Context) error {
	if !a.cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.GetRedisAddr(),
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		PoolSize: a.cfg.Redis.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redis = client
	return nil
}

func (a *app) revocations() auth.RevocationStore {
	if a.redis == nil {
		return nil
	}
	return auth.NewRedisRevocationStore(a.redis, a.cfg.Redis.Session.Prefix)
}

func (a *app) jwtManager() *auth.JWTManager {
	jwt := a.cfg.Auth.JWT
	return auth.NewJWTManager(jwt.Secret, jwt.Issuer, jwt.AccessTokenTTL)
}

// listingService wires the ticket listing pipeline. A nil reg disables
// metrics.
func (a *app) listingService(reg prometheus.Registerer) (*service.TicketListService, error) {
	loc, err := a.cfg.App.Location()
	if err != nil {
		return nil, err
	}
	mode, err := ticketquery.ParseMatchMode(a.cfg.TicketList.AssigneeMatch)
	if err != nil {
		return nil, err
	}

	var listing *metrics.Listing
	if reg != nil {
		listing = metrics.NewListing(reg, a.cfg.Metrics.Namespace)
	}

	return service.NewTicketListService(
		service.NewUserIdentityResolver(repository.NewUserRepository(a.qb)),
		repository.NewTicketRelationRepository(a.qb),
		repository.NewTicketRepository(a.qb),
		service.TicketListOptions{
			Location:     loc,
			QueryTimeout: a.cfg.TicketList.QueryTimeout,
			Resolver: ticketquery.ResolverOptions{
				AssigneeMatch: mode,
				Concurrency:   a.cfg.TicketList.LookupConcurrency,
			},
			Metrics: listing,
			Logger:  a.logger,
		},
	), nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.qb != nil {
		a.qb.DB().Close()
	}
}
