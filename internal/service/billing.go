package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/inmoval/billing/internal/api/dto"
	"github.com/inmoval/billing/internal/domain/billing"
	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/proration"
	"github.com/inmoval/billing/internal/domain/subscription"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

// confirmRetryAttempts bounds how many times a confirm is retried after a
// version conflict before the conflict is surfaced to the caller.
const confirmRetryAttempts = 2

// BillingService is the plan-change orchestrator: it quotes plan changes,
// applies confirmed ones, projects the tenant's billing status and applies
// scheduled changes at cycle boundaries.
type BillingService interface {
	// PreviewChange quotes moving the tenant to the candidate plan at the
	// current point of its billing cycle. Read-only.
	PreviewChange(ctx context.Context, req dto.PreviewChangeRequest) (*dto.ProrationQuoteResponse, error)

	// ConfirmChange recomputes the quote from current state and applies it:
	// immediately for upgrades (payment required), deferred to the cycle
	// boundary for downgrades, no-op otherwise.
	ConfirmChange(ctx context.Context, req dto.ConfirmChangeRequest) (*dto.ChangeResultResponse, error)

	// GetBillingStatus projects the tenant's user-facing billing state.
	GetBillingStatus(ctx context.Context) (*dto.BillingStatusResponse, error)

	// StartTrial creates the signup trial subscription for the tenant.
	StartTrial(ctx context.Context, req dto.StartTrialRequest) (*dto.SubscriptionResponse, error)

	// ProcessDueRenewals applies scheduled plan changes and advances billing
	// periods for every subscription whose cycle has ended. Returns the
	// number of subscriptions renewed.
	ProcessDueRenewals(ctx context.Context, now time.Time) (int, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) PreviewChange(ctx context.Context, req dto.PreviewChangeRequest) (*dto.ProrationQuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote, _, _, err := s.quoteChange(ctx, req.PlanID, req.Seats)
	if err != nil {
		return nil, err
	}

	return &dto.ProrationQuoteResponse{Quote: quote}, nil
}

func (s *billingService) ConfirmChange(ctx context.Context, req dto.ConfirmChangeRequest) (*dto.ChangeResultResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result *dto.ChangeResultResponse
	operation := func() error {
		res, err := s.confirmChangeOnce(ctx, req)
		if err != nil {
			if ierr.IsVersionConflict(err) {
				// Another writer won the race; retry with a fresh read.
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), confirmRetryAttempts),
		ctx,
	)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	return result, nil
}

// confirmChangeOnce performs one read-compute-write attempt. The quote is
// recomputed server-side so a stale preview can never drive the mutation.
func (s *billingService) confirmChangeOnce(ctx context.Context, req dto.ConfirmChangeRequest) (*dto.ChangeResultResponse, error) {
	quote, sub, candidate, err := s.quoteChange(ctx, req.PlanID, req.Seats)
	if err != nil {
		return nil, err
	}

	if req.ExpectedChangeType != nil && *req.ExpectedChangeType != quote.ChangeType {
		return nil, ierr.NewErrorf("previewed change type %s no longer matches recomputed %s", *req.ExpectedChangeType, quote.ChangeType).
			WithHint("The plan or billing cycle changed since the preview; please preview again").
			WithReportableDetails(map[string]any{
				"expected_change_type": *req.ExpectedChangeType,
				"actual_change_type":   quote.ChangeType,
			}).
			Mark(ierr.ErrQuoteStale)
	}

	switch quote.ChangeType {
	case types.PlanChangeTypeUpgrade:
		return s.applyUpgrade(ctx, sub, candidate, quote)
	case types.PlanChangeTypeDowngrade:
		return s.applyDowngrade(ctx, sub, candidate, quote)
	default:
		// Idempotent no-op: no mutation is permitted downstream.
		return &dto.ChangeResultResponse{Status: types.ChangeResultStatusNoChange}, nil
	}
}

// applyUpgrade swaps the plan for the remainder of the cycle. Cycle
// boundaries are preserved: only the plan reference and price basis change.
func (s *billingService) applyUpgrade(
	ctx context.Context,
	sub *subscription.Subscription,
	candidate *plan.Plan,
	quote *proration.Quote,
) (*dto.ChangeResultResponse, error) {
	if quote.DaysRemaining == 0 {
		return nil, ierr.NewError("billing cycle has already ended").
			WithHint("Renew the subscription before changing plans").
			Mark(ierr.ErrInvalidOperation)
	}

	expectedVersion := sub.Version

	sub.PlanID = candidate.ID
	sub.Currency = candidate.Currency
	sub.SeatCount = resolveSeatCount(candidate, quote.SeatCount)
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.ClearScheduledChange()

	if err := s.SubscriptionRepo.Save(ctx, sub, expectedVersion); err != nil {
		return nil, err
	}

	s.publishSubscriptionEvent(ctx, types.WebhookEventSubscriptionChanged, sub)

	amountDue := quote.Total
	return &dto.ChangeResultResponse{
		Status:           types.ChangeResultStatusPaymentRequired,
		AmountDue:        &amountDue,
		Currency:         quote.Currency,
		PaymentReference: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PAYMENT_REF),
	}, nil
}

// applyDowngrade never touches the active plan: it records a scheduled
// change taking effect at the cycle end. No proration credit is issued.
func (s *billingService) applyDowngrade(
	ctx context.Context,
	sub *subscription.Subscription,
	candidate *plan.Plan,
	quote *proration.Quote,
) (*dto.ChangeResultResponse, error) {
	expectedVersion := sub.Version

	sub.ScheduleChange(candidate.ID, resolveSeatCount(candidate, quote.SeatCount))

	if err := s.SubscriptionRepo.Save(ctx, sub, expectedVersion); err != nil {
		return nil, err
	}

	s.publishSubscriptionEvent(ctx, types.WebhookEventSubscriptionScheduled, sub)

	return &dto.ChangeResultResponse{
		Status:        types.ChangeResultStatusScheduled,
		EffectiveDate: sub.ScheduledEffectiveDate,
	}, nil
}

func (s *billingService) GetBillingStatus(ctx context.Context) (*dto.BillingStatusResponse, error) {
	now := time.Now().UTC()

	sub, err := s.SubscriptionRepo.GetActive(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &dto.BillingStatusResponse{
				Status: billing.Project(nil, nil, now, s.statusConfig()),
			}, nil
		}
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	return &dto.BillingStatusResponse{
		Status: billing.Project(sub, p, now, s.statusConfig()),
	}, nil
}

func (s *billingService) StartTrial(ctx context.Context, req dto.StartTrialRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.SubscriptionRepo.GetActive(ctx); err == nil {
		return nil, ierr.NewError("tenant already has an active subscription").
			WithHint("A tenant can only hold one active subscription").
			Mark(ierr.ErrAlreadyExists)
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	p, err := s.PlanRepo.GetByLookupKey(ctx, req.PlanLookupKey)
	if err != nil {
		return nil, err
	}
	if !p.Trial {
		return nil, ierr.NewErrorf("plan %s is not a trial plan", p.LookupKey).
			WithHint("Signup subscriptions must use a trial plan").
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		PlanID:             p.ID,
		SubscriptionStatus: types.SubscriptionStatusTrialing,
		Currency:           p.Currency,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, p.CycleDays),
		Version:            1,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}

	if err := s.SubscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.publishSubscriptionEvent(ctx, types.WebhookEventSubscriptionChanged, sub)

	return dto.NewSubscriptionResponse(sub)
}

// quoteChange loads current state and computes a fresh quote against the
// candidate plan.
func (s *billingService) quoteChange(ctx context.Context, candidatePlanID string, seats int) (*proration.Quote, *subscription.Subscription, *plan.Plan, error) {
	sub, err := s.SubscriptionRepo.GetActive(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	currentPlan, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, nil, err
	}

	candidate, err := s.PlanRepo.Get(ctx, candidatePlanID)
	if err != nil {
		return nil, nil, nil, err
	}

	quote, err := s.ProrationCalculator.Calculate(ctx, proration.Params{
		Subscription:       sub,
		CurrentPlan:        currentPlan,
		CandidatePlan:      candidate,
		CandidateSeatCount: seats,
		Now:                time.Now().UTC(),
		TaxRate:            s.taxRate(),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return quote, sub, candidate, nil
}

func (s *billingService) taxRate() decimal.Decimal {
	return decimal.NewFromFloat(s.Config.Billing.TaxRatePercent).Div(decimal.NewFromInt(100))
}

func (s *billingService) statusConfig() billing.Config {
	return billing.Config{GraceHours: s.Config.Billing.GraceHours}
}

// resolveSeatCount normalises the stored seat override: custom plans store
// the resolved seat count, standard plans store zero.
func resolveSeatCount(p *plan.Plan, requested int) int {
	if !p.Custom {
		return 0
	}
	if requested == 0 {
		return p.SeatFloor
	}
	return requested
}

// subscriptionEventPayload is the body of subscription.* events.
type subscriptionEventPayload struct {
	SubscriptionID     string                   `json:"subscription_id"`
	PlanID             string                   `json:"plan_id"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	PeriodStart        time.Time                `json:"period_start"`
	PeriodEnd          time.Time                `json:"period_end"`
	ScheduledPlanID    *string                  `json:"scheduled_plan_id,omitempty"`
}

// publishSubscriptionEvent emits a change notification for downstream
// consumers. Delivery failures are logged, never surfaced: a confirmed
// mutation must not be rolled back because a notification could not be sent.
func (s *billingService) publishSubscriptionEvent(ctx context.Context, eventName string, sub *subscription.Subscription) {
	event, err := types.NewWebhookEvent(eventName, sub.TenantID, subscriptionEventPayload{
		SubscriptionID:     sub.ID,
		PlanID:             sub.PlanID,
		SubscriptionStatus: sub.SubscriptionStatus,
		PeriodStart:        sub.CurrentPeriodStart,
		PeriodEnd:          sub.CurrentPeriodEnd,
		ScheduledPlanID:    sub.ScheduledPlanID,
	})
	if err != nil {
		s.Logger.Errorw("failed to build subscription event", "error", err, "subscription_id", sub.ID)
		return
	}

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish subscription event",
			"error", err,
			"event_name", eventName,
			"subscription_id", sub.ID,
		)
	}
}
