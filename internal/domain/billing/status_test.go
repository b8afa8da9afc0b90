package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/subscription"
	"github.com/inmoval/billing/internal/types"
)

var projectionNow = time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)

func paidSubscription(end time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                 "subs_test",
		PlanID:             "plan_profesional",
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: end.AddDate(0, 0, -30),
		CurrentPeriodEnd:   end,
		Version:            1,
	}
}

func TestProject(t *testing.T) {
	cfg := Config{GraceHours: 48}
	profesional := &plan.Plan{
		ID:              "plan_profesional",
		Name:            "Profesional",
		TrackerIncluded: true,
	}

	tests := []struct {
		name     string
		sub      *subscription.Subscription
		plan     *plan.Plan
		expected Status
	}{
		{
			name:     "no_subscription",
			sub:      nil,
			expected: Status{HasPlan: false, State: types.BillingStateNone},
		},
		{
			name: "cancelled_subscription_projects_none",
			sub: func() *subscription.Subscription {
				sub := paidSubscription(projectionNow.AddDate(0, 0, 10))
				sub.SubscriptionStatus = types.SubscriptionStatusCancelled
				return sub
			}(),
			plan:     profesional,
			expected: Status{HasPlan: false, State: types.BillingStateNone},
		},
		{
			name: "active_mid_cycle",
			sub:  paidSubscription(projectionNow.AddDate(0, 0, 10)),
			plan: profesional,
			expected: Status{
				HasPlan:         true,
				State:           types.BillingStateActive,
				PlanID:          "plan_profesional",
				PlanName:        "Profesional",
				TrackerIncluded: true,
				DaysRemaining:   10,
			},
		},
		{
			name: "admin_suspension_wins_over_active_cycle",
			sub: func() *subscription.Subscription {
				sub := paidSubscription(projectionNow.AddDate(0, 0, 10))
				sub.Suspended = true
				return sub
			}(),
			plan: profesional,
			expected: Status{
				HasPlan:         true,
				State:           types.BillingStateSuspended,
				PlanID:          "plan_profesional",
				PlanName:        "Profesional",
				TrackerIncluded: true,
				Suspended:       true,
				DaysRemaining:   10,
			},
		},
		{
			name: "trial_in_progress",
			sub: func() *subscription.Subscription {
				sub := paidSubscription(projectionNow.AddDate(0, 0, 5))
				sub.SubscriptionStatus = types.SubscriptionStatusTrialing
				return sub
			}(),
			plan: profesional,
			expected: Status{
				HasPlan:         true,
				State:           types.BillingStateTrial,
				PlanID:          "plan_profesional",
				PlanName:        "Profesional",
				TrackerIncluded: true,
				Trial:           true,
				DaysRemaining:   5,
			},
		},
		{
			name: "expired_trial_has_no_grace",
			sub: func() *subscription.Subscription {
				sub := paidSubscription(projectionNow.Add(-26 * time.Hour))
				sub.SubscriptionStatus = types.SubscriptionStatusTrialing
				return sub
			}(),
			plan: profesional,
			expected: Status{
				HasPlan:         true,
				State:           types.BillingStateExpired,
				PlanID:          "plan_profesional",
				PlanName:        "Profesional",
				TrackerIncluded: true,
				Trial:           true,
				Expired:         true,
				DaysRemaining:   -1,
			},
		},
		{
			name: "paid_plan_one_day_past_expiry_in_grace",
			sub:  paidSubscription(projectionNow.AddDate(0, 0, -1)),
			plan: profesional,
			expected: Status{
				HasPlan:             true,
				State:               types.BillingStateGrace,
				PlanID:              "plan_profesional",
				PlanName:            "Profesional",
				TrackerIncluded:     true,
				Expired:             true,
				InGrace:             true,
				DaysRemaining:       -1,
				GraceHoursRemaining: 24,
			},
		},
		{
			name: "paid_plan_at_grace_boundary",
			sub:  paidSubscription(projectionNow.AddDate(0, 0, -2)),
			plan: profesional,
			expected: Status{
				HasPlan:             true,
				State:               types.BillingStateGrace,
				PlanID:              "plan_profesional",
				PlanName:            "Profesional",
				TrackerIncluded:     true,
				Expired:             true,
				InGrace:             true,
				DaysRemaining:       -2,
				GraceHoursRemaining: 0,
			},
		},
		{
			name: "paid_plan_past_grace_suspended",
			sub:  paidSubscription(projectionNow.AddDate(0, 0, -3)),
			plan: profesional,
			expected: Status{
				HasPlan:         true,
				State:           types.BillingStateSuspended,
				PlanID:          "plan_profesional",
				PlanName:        "Profesional",
				TrackerIncluded: true,
				Expired:         true,
				Suspended:       true,
				DaysRemaining:   -3,
			},
		},
		{
			name: "missing_plan_row_still_projects",
			sub:  paidSubscription(projectionNow.AddDate(0, 0, 10)),
			plan: nil,
			expected: Status{
				HasPlan:       true,
				State:         types.BillingStateActive,
				DaysRemaining: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Project(tt.sub, tt.plan, projectionNow, cfg))
		})
	}
}

func TestProjectGraceWindowConfigurable(t *testing.T) {
	sub := paidSubscription(projectionNow.AddDate(0, 0, -3))

	wide := Project(sub, nil, projectionNow, Config{GraceHours: 96})
	assert.Equal(t, types.BillingStateGrace, wide.State)
	assert.Equal(t, 24, wide.GraceHoursRemaining)

	none := Project(sub, nil, projectionNow, Config{GraceHours: 0})
	assert.Equal(t, types.BillingStateSuspended, none.State)
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 10, ceilDays(10*24*time.Hour))
	assert.Equal(t, 10, ceilDays(9*24*time.Hour+time.Minute))
	assert.Equal(t, 0, ceilDays(0))
	assert.Equal(t, 0, ceilDays(-2*time.Hour))
	assert.Equal(t, -1, ceilDays(-25*time.Hour))
}
