// Package app wires the application together: storage driver selection,
// optional Redis and RabbitMQ, the calendar provider behind its circuit
// breaker, and the scheduling service.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	calendarApp "github.com/felixgeelhaar/dayblock/internal/calendar/application"
	"github.com/felixgeelhaar/dayblock/internal/calendar/infrastructure/caldav"
	googleCalendar "github.com/felixgeelhaar/dayblock/internal/calendar/infrastructure/google"
	"github.com/felixgeelhaar/dayblock/internal/notifications"
	progressApp "github.com/felixgeelhaar/dayblock/internal/progress/application"
	progressSubscribers "github.com/felixgeelhaar/dayblock/internal/progress/application/subscribers"
	progressDomain "github.com/felixgeelhaar/dayblock/internal/progress/domain"
	progressCache "github.com/felixgeelhaar/dayblock/internal/progress/infrastructure/cache"
	progressPersistence "github.com/felixgeelhaar/dayblock/internal/progress/infrastructure/persistence"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/application/services"
	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/dayblock/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/dayblock/internal/shared/application"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/database"
	pgConn "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/database/postgres"
	sqliteConn "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/dayblock/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// Container holds the wired application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage. Exactly one of SQLiteDB / PostgresPool is set.
	DBDriver     database.Driver
	SQLiteDB     *sql.DB
	PostgresPool *pgxpool.Pool

	// Optional infrastructure.
	RedisClient *redis.Client

	// Repositories and unit of work.
	BlockRepo    schedulingDomain.BlockRepository
	ProgressRepo progressDomain.ProgressRepository
	OutboxRepo   outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork

	// Eventing.
	EventPublisher  eventbus.Publisher
	InProcessBus    *eventbus.InProcessEventBus
	OutboxProcessor *outbox.Processor

	// Calendar.
	CalendarProvider calendarApp.Provider
	Coordinator      *calendarApp.SyncCoordinator

	// Application services.
	Aggregator      *progressApp.Aggregator
	Rescheduler     notifications.Rescheduler
	ScheduleService *services.ScheduleService
}

// NewContainer wires the application from configuration. Optional pieces
// (Redis, RabbitMQ, calendar provider) degrade to local fallbacks in
// development and fail hard in production.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	if err := c.connectStorage(ctx); err != nil {
		return nil, err
	}
	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.connectEventBus(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.buildCalendar(); err != nil {
		c.Close()
		return nil, err
	}
	c.buildServices()

	return c, nil
}

func (c *Container) connectStorage(ctx context.Context) error {
	dbCfg := database.Config{
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	}
	c.DBDriver = dbCfg.ResolveDriver()

	switch c.DBDriver {
	case database.DriverSQLite:
		db, err := sqliteConn.Open(ctx, dbCfg)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
		c.SQLiteDB = db
		c.BlockRepo = schedulingPersistence.NewSQLiteBlockRepository(db)
		c.ProgressRepo = progressPersistence.NewSQLiteProgressRepository(db)
		c.OutboxRepo = outbox.NewSQLiteRepository(db)
		c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)

	case database.DriverPostgres:
		pool, err := pgConn.Open(ctx, dbCfg)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
		c.PostgresPool = pool
		c.BlockRepo = schedulingPersistence.NewPostgresBlockRepository(pool)
		c.ProgressRepo = progressPersistence.NewPostgresProgressRepository(pool)
		c.OutboxRepo = outbox.NewPostgresRepository(pool)
		c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

	default:
		return fmt.Errorf("unsupported database driver: %s", c.DBDriver)
	}

	c.Logger.Info("connected to database", "driver", c.DBDriver.String())
	return nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("parse redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, progress cache disabled", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("connect to redis: %w", err)
		}
		c.Logger.Warn("Redis not available, progress cache disabled", "error", err)
		return nil
	}

	c.RedisClient = client
	c.ProgressRepo = progressCache.NewRedisProgressCache(c.ProgressRepo, client, c.Config.ProgressCacheTTL, c.Logger)
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectEventBus() error {
	if c.Config.RabbitMQURL == "" {
		bus := eventbus.NewInProcessEventBus(c.Logger)
		c.InProcessBus = bus
		c.EventPublisher = bus
		c.Logger.Info("using in-process event bus")
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
		bus := eventbus.NewInProcessEventBus(c.Logger)
		c.InProcessBus = bus
		c.EventPublisher = bus
		return nil
	}

	c.EventPublisher = publisher
	return nil
}

func (c *Container) buildCalendar() error {
	var provider calendarApp.Provider

	switch c.Config.CalendarProvider {
	case "":
		// No external calendar configured; coordinator stays disabled.

	case "caldav":
		if c.Config.CalDAVURL == "" {
			return fmt.Errorf("CALDAV_URL is required for the caldav provider")
		}
		provider = caldav.NewProvider(
			c.Config.CalDAVURL,
			c.Config.CalDAVUsername,
			c.Config.CalDAVPassword,
			c.Logger,
		)

	case "google":
		if c.Config.GoogleClientID == "" || c.Config.GoogleRefreshToken == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_REFRESH_TOKEN are required for the google provider")
		}
		oauthCfg := &oauth2.Config{
			ClientID:     c.Config.GoogleClientID,
			ClientSecret: c.Config.GoogleClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		}
		tokenSource := oauthCfg.TokenSource(context.Background(), &oauth2.Token{
			RefreshToken: c.Config.GoogleRefreshToken,
		})
		provider = googleCalendar.NewProvider(tokenSource, c.Logger)

	default:
		return fmt.Errorf("unknown calendar provider: %q", c.Config.CalendarProvider)
	}

	if provider != nil {
		provider = calendarApp.NewBreakerProvider(provider, calendarApp.DefaultBreakerConfig(), c.Logger)
	}
	c.CalendarProvider = provider
	c.Coordinator = calendarApp.NewSyncCoordinator(provider, c.BlockRepo, c.Logger)
	return nil
}

func (c *Container) buildServices() {
	c.Aggregator = progressApp.NewAggregator(c.ProgressRepo, c.Logger)

	processorConfig := outbox.DefaultProcessorConfig()
	processorConfig.PollInterval = c.Config.OutboxPollInterval
	processorConfig.BatchSize = c.Config.OutboxBatchSize
	processorConfig.MaxRetries = c.Config.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, c.Logger)

	if c.InProcessBus != nil {
		c.InProcessBus.RegisterConsumer(progressSubscribers.NewProgressSubscriber(c.BlockRepo, c.Aggregator, c.Logger))
	}

	if c.InProcessBus != nil {
		// Local mode: reminders are derived and logged, not delivered.
		c.Rescheduler = notifications.NewLoggingRescheduler(c.Config.ReminderLeadTime, c.Logger)
	} else {
		c.Rescheduler = notifications.NewPublishingRescheduler(c.EventPublisher, c.Config.ReminderLeadTime, c.Logger)
	}

	c.ScheduleService = services.NewScheduleService(
		c.BlockRepo,
		c.ProgressRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Coordinator,
		c.Rescheduler,
		c.Aggregator,
		c.Logger,
	)
}

// Close releases every connection the container owns.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing redis client", "error", err)
		}
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing sqlite", "error", err)
		}
	}
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
}
