package service

import (
	"github.com/inmoval/billing/internal/config"
	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/proration"
	"github.com/inmoval/billing/internal/domain/subscription"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	PlanRepo         plan.Repository
	SubscriptionRepo subscription.Repository

	// Domain collaborators
	ProrationCalculator proration.Calculator

	// Event publishing
	EventPublisher publisher.EventPublisher
}

// NewServiceParams assembles the common service dependencies for DI
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	planRepo plan.Repository,
	subscriptionRepo subscription.Repository,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		PlanRepo:            planRepo,
		SubscriptionRepo:    subscriptionRepo,
		ProrationCalculator: proration.NewCalculator(),
		EventPublisher:      eventPublisher,
	}
}
