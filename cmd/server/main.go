package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/inmoval/billing/internal/api"
	v1 "github.com/inmoval/billing/internal/api/v1"
	"github.com/inmoval/billing/internal/cache"
	"github.com/inmoval/billing/internal/config"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/postgres"
	"github.com/inmoval/billing/internal/publisher"
	"github.com/inmoval/billing/internal/pubsub/memory"
	pubsubRouter "github.com/inmoval/billing/internal/pubsub/router"
	"github.com/inmoval/billing/internal/repository"
	"github.com/inmoval/billing/internal/service"
	"github.com/inmoval/billing/internal/types"
	"github.com/inmoval/billing/internal/validator"
	"github.com/inmoval/billing/internal/webhook"
)

// @title Inmoval Billing API
// @version 1.0
// @description Subscription plan change and billing status service
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,

			// PubSub
			memory.NewPubSub,
			pubsubRouter.NewRouter,

			// Event publishing and consumption
			publisher.NewEventPublisher,
			webhook.NewHandler,

			// Repositories
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,

			// Services
			service.NewServiceParams,
			service.NewPlanService,
			service.NewBillingService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	planService service.PlanService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Plan:    v1.NewPlanHandler(planService, logger),
		Billing: v1.NewBillingHandler(billingService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	eventHandler webhook.Handler,
	billingService service.BillingService,
	db *postgres.DB,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, eventHandler, log)
		startRenewalCron(lc, cfg, billingService, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("Starting API server on %s", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	eventHandler webhook.Handler,
	log *logger.Logger,
) {
	// Register handlers before starting the router
	eventHandler.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(); err != nil {
					log.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping message router")
			return router.Close()
		},
	})
}

// startRenewalCron applies due scheduled plan changes and rolls billing
// periods on the configured schedule.
func startRenewalCron(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	billingService service.BillingService,
	log *logger.Logger,
) {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(cfg.Billing.RenewalCron, func() {
		ctx := context.Background()
		renewed, err := billingService.ProcessDueRenewals(ctx, time.Now().UTC())
		if err != nil {
			log.Errorw("renewal sweep failed", "error", err)
			return
		}
		if renewed > 0 {
			log.Infow("renewal sweep completed", "renewed", renewed)
		}
	})
	if err != nil {
		log.Fatalf("invalid renewal cron expression %q: %v", cfg.Billing.RenewalCron, err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("starting renewal scheduler with cron %q", cfg.Billing.RenewalCron)
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}
