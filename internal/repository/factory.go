package repository

import (
	"github.com/inmoval/billing/internal/cache"
	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/subscription"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/postgres"
	postgresRepo "github.com/inmoval/billing/internal/repository/postgres"
)

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger, cache)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}
