// Package main is the entry point for the bot order bridge.
// It wires together all modules and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rai/bot-order-bridge/internal/platform/background"
	"github.com/rai/bot-order-bridge/internal/platform/config"
	"github.com/rai/bot-order-bridge/internal/platform/eventbus"
	"github.com/rai/bot-order-bridge/internal/platform/httpserver"
	"github.com/rai/bot-order-bridge/internal/platform/postgres"
	"github.com/rai/bot-order-bridge/internal/platform/spanner"
	"github.com/rai/bot-order-bridge/internal/platform/telemetry"
	"github.com/rai/bot-order-bridge/modules/botplatform"
	botclient "github.com/rai/bot-order-bridge/modules/botplatform/infrastructure/client"
	"github.com/rai/bot-order-bridge/modules/catalog"
	catalogdomain "github.com/rai/bot-order-bridge/modules/catalog/domain"
	catalogpersistence "github.com/rai/bot-order-bridge/modules/catalog/infrastructure/persistence"
	"github.com/rai/bot-order-bridge/modules/crm"
	crmapp "github.com/rai/bot-order-bridge/modules/crm/application"
	crmclient "github.com/rai/bot-order-bridge/modules/crm/infrastructure/client"
	"github.com/rai/bot-order-bridge/modules/ecommerce"
	ecomdomain "github.com/rai/bot-order-bridge/modules/ecommerce/domain"
	ecomclient "github.com/rai/bot-order-bridge/modules/ecommerce/infrastructure/client"
	"github.com/rai/bot-order-bridge/modules/ledger"
	ledgerpersistence "github.com/rai/bot-order-bridge/modules/ledger/infrastructure/persistence"
	"github.com/rai/bot-order-bridge/modules/notifications"
	"github.com/rai/bot-order-bridge/modules/orders"
	orderspersistence "github.com/rai/bot-order-bridge/modules/orders/infrastructure/persistence"
	"github.com/rai/bot-order-bridge/modules/shared/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("starting bot order bridge")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Spanner client (mappings, ledger, tracking records)
	spannerCfg := spanner.Config{
		ProjectID:   cfg.Spanner.ProjectID,
		InstanceID:  cfg.Spanner.InstanceID,
		DatabaseID:  cfg.Spanner.DatabaseID,
		MinSessions: cfg.Spanner.MinSessions,
		MaxSessions: cfg.Spanner.MaxSessions,
	}
	spannerClient, err := spanner.NewClient(ctx, spannerCfg)
	if err != nil {
		logger.Error("failed to create spanner client", slog.Any("error", err))
		os.Exit(1)
	}
	defer spannerClient.Close()

	logger.Info("connected to spanner", slog.String("dsn", spannerCfg.DSN()))

	// Ecommerce store database (catalog products)
	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		logger.Error("failed to connect to postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := telemetry.NewMetrics()

	// Side effects run here, detached from requests
	dispatcher := background.New(background.Config{
		Workers:   cfg.Saga.SideEffectWorkers,
		QueueSize: cfg.Saga.SideEffectQueue,
		Timeout:   cfg.Saga.SideEffectTimeout,
		Logger:    logger.With("component", "dispatcher"),
		OnFailure: metrics.SideEffectFailed,
	})

	// Initialize event bus (for inter-module communication)
	registry := eventbus.NewEventHandlerRegistry(logger)
	eventBus := eventbus.New(registry, dispatcher, logger)

	var forwarder events.Handler
	if cfg.Kafka.Enabled() {
		writer := eventbus.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer writer.Close()
		forwarder = eventbus.NewKafkaForwarder(writer)
		logger.Info("forwarding saga events to kafka", slog.String("topic", cfg.Kafka.Topic))
	}

	// Initialize repositories
	var products catalogdomain.ProductRepository = catalogpersistence.NewPostgresProductRepository(pool, cfg.CRM.Currency)
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		products = catalogpersistence.NewCachedProductRepository(products, catalogpersistence.NewRedisCache(rdb, "catalog:"), cfg.Redis.CacheTTL, logger)
	}
	mappingsRepo := catalogpersistence.NewSpannerMappingRepository(spannerClient)
	ledgerRepo := ledgerpersistence.NewSpannerRepository(spannerClient)
	ordersRepo := orderspersistence.NewSpannerRepository(spannerClient)

	// Initialize modules
	catalogModule := catalog.New(catalog.Config{
		Products: products,
		Mappings: mappingsRepo,
		TxScope:  spanner.NewReadWriteTransactionScope(spannerClient, "catalog-upsert-mapping"),
		Currency: cfg.CRM.Currency,
		Logger:   logger,
	})

	crmModule := crm.New(crm.Config{
		Capabilities: crmclient.New(crmclient.Config{
			BaseURL:      cfg.CRM.BaseURL,
			AuthURL:      cfg.CRM.AuthURL,
			ClientID:     cfg.CRM.ClientID,
			ClientSecret: cfg.CRM.ClientSecret,
			Timeout:      cfg.CRM.Timeout,
			RateLimit:    cfg.CRM.RateLimit,
			Burst:        cfg.CRM.Burst,
			Logger:       logger,
		}),
		Deal: crmapp.DealBuilderConfig{
			PipelineID:         cfg.CRM.PipelineID,
			StageID:            cfg.CRM.StageID,
			Currency:           cfg.CRM.Currency,
			TitleMaxLength:     cfg.CRM.TitleMaxLength,
			AttributeMaxLength: cfg.CRM.AttributeMaxLength,
			Slots:              crmapp.AttributeSlots(cfg.CRM.Attributes),
		},
		Logger: logger,
	})

	stations := make([]ecomdomain.Station, len(cfg.Ecommerce.Stations))
	for i, s := range cfg.Ecommerce.Stations {
		stations[i] = toStation(s)
	}
	ecommerceModule := ecommerce.New(ecommerce.Config{
		Gateway: ecomclient.New(ecomclient.Config{
			BaseURL: cfg.Ecommerce.BaseURL,
			APIKey:  cfg.Ecommerce.APIKey,
			Timeout: cfg.Ecommerce.Timeout,
		}),
		Source:        cfg.Ecommerce.Source,
		DefaultPickup: toStation(cfg.Ecommerce.DefaultPickup),
		Stations:      stations,
		Logger:        logger,
	})

	botModule := botplatform.New(botplatform.Config{
		Variables: botclient.New(botclient.Config{
			BaseURL: cfg.BotPlatform.BaseURL,
			APIKey:  cfg.BotPlatform.APIKey,
			Timeout: cfg.BotPlatform.Timeout,
		}),
		ActiveOrderVariable: cfg.BotPlatform.ActiveOrderVariable,
		Logger:              logger,
	})

	ledgerModule := ledger.New(ledger.Config{
		Repository: ledgerRepo,
		Logger:     logger,
	})

	ordersModule := orders.New(orders.Config{
		Repository:        ordersRepo,
		ReadScope:         spanner.NewReadOnlyTransactionScope(spannerClient, cfg.Spanner.ReadStaleness),
		Catalog:           catalogModule.Resolver(),
		Contacts:          crmModule.Contacts(),
		Deals:             crmModule.Deals(),
		CRM:               crmModule.Capabilities(),
		Store:             ecommerceModule.Orders(),
		Ledger:            ledgerModule.Recorder(),
		EventPublisher:    eventBus,
		Observer:          metrics,
		AttachConcurrency: cfg.Saga.AttachConcurrency,
		Logger:            logger,
	})

	// Each module subscribes to events it cares about internally
	_ = notifications.New(notifications.Config{
		EventSubscriber: registry,
		ActiveOrderFlag: botModule.ActiveOrderFlag(),
		Ledger:          ledgerModule.Recorder(),
		Forwarder:       forwarder,
		Logger:          logger,
	})
	registry.LogSubscriptions()

	// Build HTTP router
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", httpserver.Health(2*time.Second,
		httpserver.Check{Name: "spanner", Fn: func(ctx context.Context) error { return spanner.Ping(ctx, spannerClient) }},
		httpserver.Check{Name: "postgres", Fn: pool.Ping},
	))
	mux.Handle("GET /metrics", metrics.Handler())

	// Each module registers its own routes (same pattern as event subscriptions)
	ordersModule.RegisterRoutes(mux)
	ledgerModule.RegisterRoutes(mux)
	catalogModule.RegisterRoutes(mux)

	handler := httpserver.Middleware(mux,
		httpserver.Recovery(logger),
		httpserver.Logging(logger),
		httpserver.Metrics(metrics.HTTPRequests, metrics.HTTPLatency),
	)

	server := httpserver.New(httpserver.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, handler, logger)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.Any("error", err))
	}

	// In-flight side effects get their own shutdown budget.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := dispatcher.Stop(drainCtx); err != nil {
		logger.Warn("side effects still running at shutdown", slog.Any("error", err))
	}

	logger.Info("server stopped")
}

func toStation(s config.Station) ecomdomain.Station {
	return ecomdomain.Station{
		Name:         s.Name,
		Aliases:      s.Aliases,
		City:         s.City,
		Canton:       s.Canton,
		DeliveryType: s.DeliveryType,
		Address:      s.Address,
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
