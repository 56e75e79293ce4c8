package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"realty_leads_backend/internal/email"
	apphttp "realty_leads_backend/internal/http"
	"realty_leads_backend/internal/http/router"
	"realty_leads_backend/internal/listings"
	"realty_leads_backend/internal/routing"
	"realty_leads_backend/internal/routing/actions"
	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/routing/repository"
	"realty_leads_backend/internal/scheduler"
	"realty_leads_backend/internal/scheduling"
	"realty_leads_backend/platform/config"
	"realty_leads_backend/platform/db"
	"realty_leads_backend/platform/events"
	"realty_leads_backend/platform/logger"
	"realty_leads_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender := initEmailSender(cfg, log)

	crmQueue, closeQueue := initCRMQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// ========================================================================
	// Routing Engine (Composition Root)
	// ========================================================================

	mapping := initMappingTable(cfg, log)
	registry := initRouteRegistry(cfg, log)
	classifier := engine.NewClassifier(engine.DefaultFormRoutes())

	prices := listings.NewCachedLookup(
		listings.NewRepository(pool),
		rdb,
		cfg.GetListingCacheTTL(),
		log,
	)

	evaluator := engine.NewEvaluator(prices, cfg.GetBusinessHoursStart(), cfg.GetBusinessHoursEnd())
	scorer := engine.NewScorer(cfg.GetBusinessHoursStart(), cfg.GetBusinessHoursEnd())

	repo := repository.New(pool)
	deps := actions.Deps{
		Store:       repo,
		Sender:      sender,
		AgentInbox:  cfg.GetAgentInboxAddress(),
		CRM:         crmQueue,
		Links:       scheduling.NewLinkBuilder(cfg),
		TeamMembers: cfg.GetTeamMembers(),
	}
	pipeline := engine.NewPipeline(actions.Registry(deps), actions.NewFallback(), log)

	service := routing.NewService(mapping, classifier, registry, evaluator, scorer, pipeline, eventBus, log)
	routingModule := routing.NewModule(routing.NewHandler(service, repo, validator.New(), cfg), cfg)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Env:      cfg.Env,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			routingModule,
		},
	}

	ginEngine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- ginEngine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initEmailSender(cfg config.MailConfig, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email delivery disabled; lead confirmations will not be sent")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func initCRMQueue(cfg *config.Config, log *logger.Logger) (scheduler.CRMEnqueuer, func()) {
	if !cfg.IsCRMSyncEnabled() {
		log.Warn("CRM sync not configured; leads will not be pushed to Follow Up Boss")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize CRM sync queue", "error", err)
		return nil, nil
	}
	return client, func() {
		_ = client.Close()
	}
}

func initRedis(cfg config.ListingCacheConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; listing price cache disabled")
		return nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; listing price cache disabled", "error", err)
		return nil
	}
	return redis.NewClient(opts)
}

func initMappingTable(cfg config.RoutingConfig, log *logger.Logger) *engine.MappingTable {
	if cfg.GetMappingFile() == "" {
		return engine.DefaultMappingTable()
	}

	mapping, err := engine.LoadMappingTable(cfg.GetMappingFile())
	if err != nil {
		log.Error("failed to load field mapping file", "error", err, "path", cfg.GetMappingFile())
		panic("failed to load field mapping file: " + err.Error())
	}
	log.Info("field mapping loaded", "path", cfg.GetMappingFile())
	return mapping
}

func initRouteRegistry(cfg config.RoutingConfig, log *logger.Logger) *engine.Registry {
	registry := engine.NewRegistry()
	if cfg.GetRoutesFile() == "" {
		return registry
	}

	if err := registry.LoadFile(cfg.GetRoutesFile()); err != nil {
		log.Error("failed to load routes file", "error", err, "path", cfg.GetRoutesFile())
		panic("failed to load routes file: " + err.Error())
	}
	log.Info("route definitions loaded", "path", cfg.GetRoutesFile(), "routes", registry.Names())
	return registry
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
