package service

import (
	"context"
	"time"

	"github.com/inmoval/billing/internal/domain/subscription"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

func (s *billingService) ProcessDueRenewals(ctx context.Context, now time.Time) (int, error) {
	due, err := s.SubscriptionRepo.ListDueForRenewal(ctx, now)
	if err != nil {
		return 0, err
	}

	renewed := 0
	for _, sub := range due {
		tenantCtx := types.SetTenantID(ctx, sub.TenantID)
		if err := s.renewOne(tenantCtx, sub, now); err != nil {
			if ierr.IsVersionConflict(err) {
				// A concurrent confirm touched this subscription; the next
				// sweep picks it up with fresh state.
				s.Logger.Infow("skipping renewal after version conflict", "subscription_id", sub.ID)
				continue
			}
			s.Logger.Errorw("failed to renew subscription",
				"error", err,
				"subscription_id", sub.ID,
				"tenant_id", sub.TenantID,
			)
			continue
		}
		renewed++
	}

	return renewed, nil
}

// renewOne advances one subscription into its next billing period. A
// scheduled plan change whose effective date has arrived is applied first,
// so the new period is priced and sized by the target plan.
func (s *billingService) renewOne(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	expectedVersion := sub.Version

	targetPlanID := sub.PlanID
	targetSeats := sub.SeatCount
	if sub.HasScheduledChange() && !sub.ScheduledEffectiveDate.After(now) {
		targetPlanID = *sub.ScheduledPlanID
		if sub.ScheduledSeatCount != nil {
			targetSeats = *sub.ScheduledSeatCount
		} else {
			targetSeats = 0
		}
	}

	p, err := s.PlanRepo.Get(ctx, targetPlanID)
	if err != nil {
		return err
	}

	sub.PlanID = p.ID
	sub.Currency = p.Currency
	sub.SeatCount = targetSeats
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.ClearScheduledChange()
	sub.CurrentPeriodStart = sub.CurrentPeriodEnd
	sub.CurrentPeriodEnd = sub.CurrentPeriodStart.AddDate(0, 0, p.CycleDays)

	if err := s.SubscriptionRepo.Save(ctx, sub, expectedVersion); err != nil {
		return err
	}

	s.publishSubscriptionEvent(ctx, types.WebhookEventSubscriptionRenewed, sub)

	s.Logger.Infow("renewed subscription",
		"subscription_id", sub.ID,
		"plan_id", sub.PlanID,
		"period_end", sub.CurrentPeriodEnd,
	)

	return nil
}
