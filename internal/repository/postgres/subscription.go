package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/inmoval/billing/internal/domain/subscription"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/postgres"
	"github.com/inmoval/billing/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			tenant_id,
			plan_id,
			subscription_status,
			currency,
			current_period_start,
			current_period_end,
			seat_count,
			scheduled_plan_id,
			scheduled_seat_count,
			scheduled_effective_date,
			cancelled_at,
			suspended,
			version,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:plan_id,
			:subscription_status,
			:currency,
			:current_period_start,
			:current_period_end,
			:seat_count,
			:scheduled_plan_id,
			:scheduled_seat_count,
			:scheduled_effective_date,
			:cancelled_at,
			:suspended,
			:version,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"tenant_id", sub.TenantID,
		"plan_id", sub.PlanID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		r.logger.Errorw("failed to create subscription", "error", err)
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = $1
		AND tenant_id = $2
	`

	var sub subscription.Subscription
	err := r.db.GetContext(ctx, &sub, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, subscriptionFetchErr(err, id)
	}

	return &sub, nil
}

func (r *subscriptionRepository) GetActive(ctx context.Context) (*subscription.Subscription, error) {
	tenantID := types.GetTenantID(ctx)
	query := `
		SELECT * FROM subscriptions
		WHERE tenant_id = $1
		AND subscription_status IN ($2, $3)
		AND status = $4
		ORDER BY created_at DESC
		LIMIT 1
	`

	var sub subscription.Subscription
	err := r.db.GetContext(ctx, &sub, query,
		tenantID,
		types.SubscriptionStatusActive,
		types.SubscriptionStatusTrialing,
		types.StatusPublished,
	)
	if err != nil {
		return nil, subscriptionFetchErr(err, tenantID)
	}

	return &sub, nil
}

// Save persists the record guarded by a compare-and-swap on the version
// column. Two concurrent writers for the same tenant cannot both succeed.
func (r *subscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription, expectedVersion int) error {
	sub.Version = expectedVersion + 1
	sub.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscriptions SET
			plan_id = :plan_id,
			subscription_status = :subscription_status,
			currency = :currency,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			seat_count = :seat_count,
			scheduled_plan_id = :scheduled_plan_id,
			scheduled_seat_count = :scheduled_seat_count,
			scheduled_effective_date = :scheduled_effective_date,
			cancelled_at = :cancelled_at,
			suspended = :suspended,
			version = :version,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND version = :expected_version
	`

	arg := map[string]interface{}{
		"id":                       sub.ID,
		"plan_id":                  sub.PlanID,
		"subscription_status":      sub.SubscriptionStatus,
		"currency":                 sub.Currency,
		"current_period_start":     sub.CurrentPeriodStart,
		"current_period_end":       sub.CurrentPeriodEnd,
		"seat_count":               sub.SeatCount,
		"scheduled_plan_id":        sub.ScheduledPlanID,
		"scheduled_seat_count":     sub.ScheduledSeatCount,
		"scheduled_effective_date": sub.ScheduledEffectiveDate,
		"cancelled_at":             sub.CancelledAt,
		"suspended":                sub.Suspended,
		"version":                  sub.Version,
		"updated_at":               sub.UpdatedAt,
		"updated_by":               sub.UpdatedBy,
		"expected_version":         expectedVersion,
	}

	result, err := r.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		r.logger.Errorw("failed to save subscription",
			"subscription_id", sub.ID,
			"error", err,
		)
		return ierr.WithError(err).
			WithHint("Failed to save subscription").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to save subscription").
			Mark(ierr.ErrDatabase)
	}

	if affected == 0 {
		// Either the row vanished or someone else won the version race.
		sub.Version = expectedVersion
		return ierr.NewErrorf("subscription %s was modified concurrently (expected version %d)", sub.ID, expectedVersion).
			WithHint("The subscription was changed by another request; please retry").
			Mark(ierr.ErrVersionConflict)
	}

	return nil
}

func (r *subscriptionRepository) ListDueForRenewal(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE subscription_status = $1
		AND current_period_end <= $2
		AND status = $3
		ORDER BY current_period_end ASC
	`

	var subs []*subscription.Subscription
	err := r.db.SelectContext(ctx, &subs, query,
		types.SubscriptionStatusActive,
		now,
		types.StatusPublished,
	)
	if err != nil {
		r.logger.Errorw("failed to list subscriptions due for renewal", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions due for renewal").
			Mark(ierr.ErrDatabase)
	}

	return subs, nil
}

func subscriptionFetchErr(err error, ref string) error {
	if err == sql.ErrNoRows {
		return ierr.WithError(err).
			WithHint("No active subscription found").
			WithReportableDetails(map[string]any{
				"subscription": ref,
			}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to fetch subscription").
		Mark(ierr.ErrDatabase)
}
