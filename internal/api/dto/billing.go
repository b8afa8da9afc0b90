package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmoval/billing/internal/domain/billing"
	"github.com/inmoval/billing/internal/domain/proration"
	"github.com/inmoval/billing/internal/domain/subscription"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
	"github.com/inmoval/billing/internal/validator"
)

// PreviewChangeRequest asks for a quote of moving the tenant to a candidate
// plan. Seats only applies to custom plans; zero means the plan default.
type PreviewChangeRequest struct {
	PlanID string `form:"plan_id" json:"plan_id" validate:"required"`
	Seats  int    `form:"seats" json:"seats" validate:"gte=0"`
}

func (r *PreviewChangeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ConfirmChangeRequest applies a previewed plan change. ExpectedChangeType is
// the classification the client previewed; the server recomputes the quote
// and rejects the confirm as stale when they disagree.
type ConfirmChangeRequest struct {
	PlanID             string                `json:"plan_id" validate:"required"`
	Seats              int                   `json:"seats" validate:"gte=0"`
	ExpectedChangeType *types.PlanChangeType `json:"expected_change_type,omitempty"`
}

func (r *ConfirmChangeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.ExpectedChangeType != nil {
		if err := r.ExpectedChangeType.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StartTrialRequest creates the signup trial subscription for the tenant.
type StartTrialRequest struct {
	PlanLookupKey string `json:"plan_lookup_key" validate:"required"`
}

func (r *StartTrialRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ProrationQuoteResponse is the preview result
type ProrationQuoteResponse struct {
	*proration.Quote
}

// ChangeResultResponse is the outcome of a confirmed plan change. Exactly one
// of the optional groups is set depending on Status.
type ChangeResultResponse struct {
	Status types.ChangeResultStatus `json:"status"`

	// Set for payment_required
	AmountDue        *decimal.Decimal `json:"amount_due,omitempty"`
	Currency         string           `json:"currency,omitempty"`
	PaymentReference string           `json:"payment_reference,omitempty"`

	// Set for scheduled
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

// BillingStatusResponse is the derived billing status projection
type BillingStatusResponse struct {
	billing.Status
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	*subscription.Subscription
}

// NewSubscriptionResponse guards against nil subscriptions from lookups.
func NewSubscriptionResponse(sub *subscription.Subscription) (*SubscriptionResponse, error) {
	if sub == nil {
		return nil, ierr.NewError("subscription is nil").
			Mark(ierr.ErrSystem)
	}
	return &SubscriptionResponse{Subscription: sub}, nil
}
