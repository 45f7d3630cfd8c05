// Command customer-store keeps a local snapshot of the remote customers
// collection and serves it, together with intent endpoints, over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"customer-store/internal/actionlog"
	"customer-store/internal/api"
	"customer-store/internal/batch"
	"customer-store/internal/config"
	"customer-store/internal/event"
	"customer-store/internal/infrastructure/logging"
	"customer-store/internal/infrastructure/remote"
	"customer-store/internal/state"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const effectsDrainTimeout = 10 * time.Second

func main() {
	cfg, logger := initializeApp()

	client, err := initializeRemote(cfg.Remote, logger)
	if err != nil {
		logger.Error("Failed to initialize remote customers client", "error", err)
		os.Exit(1)
	}

	store, effects := initializeStore(client, logger)

	broker := connectBroker(cfg.RabbitMQ, logger)
	recorder := initializeActionLog(broker, cfg.RabbitMQ, logger)
	if recorder != nil {
		store.Subscribe(recorder.Handle)
	}
	consumer := startChangeConsumer(context.Background(), broker, cfg.RabbitMQ, store, logger)

	cronScheduler := startBatchJobs(cfg.Refresh, logger, batch.NewRefreshJob(store, logger))

	store.Dispatch(state.LoadCustomers{})

	router := api.SetupViewRouter(store, cfg, logger)
	srv, serverErrors, shutdownChan := api.StartServer(cfg.Server.Port, cfg.Server, router, logger)
	shutdownErr := api.HandleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)

	if consumer != nil {
		consumer.Stop()
	}
	waitForEffects(effects, effectsDrainTimeout, logger)
	if recorder != nil {
		recorder.Close()
	}
	closeBroker(broker, logger)

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

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeRemote(cfg config.RemoteConfig, logger *slog.Logger) (*remote.CustomerClient, error) {
	opts := []remote.Option{remote.WithTimeout(cfg.Timeout)}
	if cfg.BearerToken != "" {
		opts = append(opts, remote.WithBearerToken(cfg.BearerToken))
	}
	logger.Info("Initializing remote customers client...", "baseURL", cfg.BaseURL, "timeout", cfg.Timeout)
	return remote.NewCustomerClient(cfg.BaseURL, logger, opts...)
}

func initializeStore(client *remote.CustomerClient, logger *slog.Logger) (*state.Store, *state.Effects) {
	store := state.NewStore(logger)
	effects := state.NewEffects(client, store, logger)
	store.Subscribe(effects.Handle)
	return store, effects
}

// connectBroker dials RabbitMQ when enabled. An unreachable broker disables
// the action log and change events instead of stopping the store.
func connectBroker(cfg config.RabbitMQConfig, logger *slog.Logger) *amqp.Connection {
	if !cfg.Enabled {
		logger.Info("RabbitMQ disabled via configuration.")
		return nil
	}
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ, action log and change events disabled", "host", cfg.Host, "error", err)
		return nil
	}
	logger.Info("RabbitMQ connection established.", "host", cfg.Host)
	return conn
}

func initializeActionLog(conn *amqp.Connection, cfg config.RabbitMQConfig, logger *slog.Logger) *actionlog.Recorder {
	if conn == nil {
		return nil
	}
	pub, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up action log publisher, action log disabled", "error", err)
		return nil
	}
	logger.Info("Action log publishing to RabbitMQ", "exchange", cfg.ExchangeName)
	return actionlog.NewRecorder(pub, logger)
}

// startChangeConsumer reloads the store on every backend change event.
func startChangeConsumer(ctx context.Context, conn *amqp.Connection, cfg config.RabbitMQConfig, store state.Dispatcher, logger *slog.Logger) *event.Consumer {
	if conn == nil {
		return nil
	}
	listener := batch.NewChangeListener(store, logger)
	consumer, err := event.NewConsumer(conn, cfg.ExchangeName, cfg.QueueName, cfg.ConsumerTag, event.CustomerRoutingKeys, listener.HandleDelivery, logger)
	if err != nil {
		logger.Warn("Failed to create change event consumer", "error", err)
		return nil
	}
	if err := consumer.Start(ctx); err != nil {
		logger.Warn("Failed to start change event consumer", "error", err)
		return nil
	}
	return consumer
}

func closeBroker(conn *amqp.Connection, logger *slog.Logger) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		logger.Warn("Failed to close RabbitMQ connection", "error", err)
	}
}

func startBatchJobs(cfg config.RefreshConfig, logger *slog.Logger, refreshJob *batch.RefreshJob) *cron.Cron {
	c := cron.New()
	if !cfg.Enabled {
		logger.Info("Periodic refresh disabled via configuration.")
		return c
	}

	scheduleSpec := cfg.Schedule
	if scheduleSpec == "" {
		scheduleSpec = "@every 5m"
		logger.Warn("Refresh schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Timeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "RefreshCustomers")
		jobLogger.Info("Cron triggered: refreshing customers.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := refreshJob.Run(ctx); runErr != nil {
			jobLogger.Error("Refresh job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule refresh job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled refresh job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

// waitForEffects lets in-flight remote calls land before exit, bounded by
// timeout.
func waitForEffects(effects *state.Effects, timeout time.Duration, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		effects.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("In-flight effects completed.")
	case <-time.After(timeout):
		logger.Warn("Timed out waiting for in-flight effects.")
	}
}
