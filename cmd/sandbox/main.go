// Command sandbox serves the customers REST resource the store talks to,
// backed by memory, SQLite or PostgreSQL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-store/internal/api"
	"customer-store/internal/config"
	"customer-store/internal/domain/customer"
	"customer-store/internal/event"
	"customer-store/internal/infrastructure/database/memory"
	"customer-store/internal/infrastructure/database/postgres"
	"customer-store/internal/infrastructure/database/seed"
	"customer-store/internal/infrastructure/database/sqlite"
	"customer-store/internal/infrastructure/logging"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const seedValue = 42

func main() {
	cfg, logger := initializeApp()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, closeRepo, err := openRepository(ctx, cfg.Database, logger)
	if err != nil {
		cancel()
		logger.Error("Failed to open customer repository", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	if _, err := seed.Customers(ctx, repo, seed.NewGenerator(seedValue), cfg.Database.Seed, logger); err != nil {
		logger.Warn("Seeding customers failed", "error", err)
	}
	cancel()

	publisher, closeBroker := initializePublisher(cfg.RabbitMQ, logger)
	redisClient := initializeRedis(cfg.Redis, logger)

	svc := customer.NewCustomerService(repo, publisher, logger)
	router := api.SetupSandboxRouter(svc, cfg, redisClient, logger)

	srv, serverErrors, shutdownChan := api.StartServer(cfg.Sandbox.Port, cfg.Server, router, logger)
	shutdownErr := api.HandleShutdown(srv, nil, shutdownChan, serverErrors, logger)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", "error", err)
		}
	}
	closeBroker()
	closeRepo()

	if shutdownErr != nil {
		os.Exit(1)
	}
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger).With("app", "sandbox")
	logger.Info("Sandbox starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

// openRepository selects the storage backend by driver name. The returned
// func releases it.
func openRepository(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (customer.Repository, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Info("Using in-memory customer repository.")
		return memory.NewCustomerRepository(logger), func() {}, nil

	case "sqlite":
		repo, err := sqlite.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close SQLite database", "error", err)
			}
		}, nil

	case "postgres":
		pool, err := postgres.Open(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewCustomerRepository(pool, logger), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func initializePublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (event.EventPublisher, func()) {
	noop := func() {}
	if !cfg.Enabled {
		logger.Info("Customer events disabled via configuration.")
		return event.NopPublisher{}, noop
	}

	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ, customer events disabled", "host", cfg.Host, "error", err)
		return event.NopPublisher{}, noop
	}

	pub, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up customer event publisher", "error", err)
		_ = conn.Close()
		return event.NopPublisher{}, noop
	}

	return pub, func() {
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close RabbitMQ connection", "error", err)
		}
	}
}

// initializeRedis returns nil when no address is configured, which selects
// the in-process rate limiter.
func initializeRedis(cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	logger.Info("Using Redis for rate limiting", "addr", cfg.Addr)
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
