package postgres

import (
	"context"
	"database/sql"

	"github.com/inmoval/billing/internal/cache"
	"github.com/inmoval/billing/internal/domain/plan"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/postgres"
	"github.com/inmoval/billing/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return &planRepository{db: db, logger: logger, cache: cache}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id,
			tenant_id,
			lookup_key,
			name,
			description,
			currency,
			net_monthly_price,
			max_seats,
			cycle_days,
			trial,
			tracker_included,
			custom,
			seat_floor,
			seat_ceiling,
			per_seat_price,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:lookup_key,
			:name,
			:description,
			:currency,
			:net_monthly_price,
			:max_seats,
			:cycle_days,
			:trial,
			:tracker_included,
			:custom,
			:seat_floor,
			:seat_ceiling,
			:per_seat_price,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating plan",
		"plan_id", p.ID,
		"lookup_key", p.LookupKey,
	)

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		r.logger.Errorw("failed to create plan", "error", err)
		return ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrDatabase)
	}

	r.cache.DeleteByPrefix(ctx, cache.PrefixPlan)
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlan, id)
	if cached, found := r.cache.Get(ctx, key); found {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	query := `
		SELECT * FROM plans
		WHERE id = $1
		AND status = $2
	`

	var p plan.Plan
	if err := r.db.GetContext(ctx, &p, query, id, types.StatusPublished); err != nil {
		return nil, planNotFound(err, id)
	}

	r.cache.Set(ctx, key, &p, cache.DefaultExpiration)
	return &p, nil
}

func (r *planRepository) GetByLookupKey(ctx context.Context, lookupKey string) (*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlan, "lookup", lookupKey)
	if cached, found := r.cache.Get(ctx, key); found {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	query := `
		SELECT * FROM plans
		WHERE lookup_key = $1
		AND status = $2
	`

	var p plan.Plan
	if err := r.db.GetContext(ctx, &p, query, lookupKey, types.StatusPublished); err != nil {
		return nil, planNotFound(err, lookupKey)
	}

	r.cache.Set(ctx, key, &p, cache.DefaultExpiration)
	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	query := `
		SELECT * FROM plans
		WHERE status = $1
		ORDER BY net_monthly_price ASC
	`

	var plans []*plan.Plan
	if err := r.db.SelectContext(ctx, &plans, query, types.StatusPublished); err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}

	return plans, nil
}

func planNotFound(err error, ref string) error {
	if err == sql.ErrNoRows {
		return ierr.WithError(err).
			WithHintf("Plan %s was not found", ref).
			WithReportableDetails(map[string]any{
				"plan": ref,
			}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to fetch plan").
		Mark(ierr.ErrDatabase)
}
