package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/inmoval/billing/internal/api/v1"
	"github.com/inmoval/billing/internal/config"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/rest/middleware"
	"github.com/inmoval/billing/internal/types"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Plan    *v1.PlanHandler
	Billing *v1.BillingHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1", middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	plans := router.Group("/plans")
	{
		plans.GET("", handlers.Plan.ListPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
	}

	billing := router.Group("/billing")
	{
		billing.GET("/preview", handlers.Billing.PreviewChange)
		billing.POST("/change", handlers.Billing.ConfirmChange)
		billing.GET("/status", handlers.Billing.GetBillingStatus)
		billing.POST("/trial", handlers.Billing.StartTrial)
	}
}
