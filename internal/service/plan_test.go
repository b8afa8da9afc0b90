package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/proration"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/testutil"
	"github.com/inmoval/billing/internal/types"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanService(ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		PlanRepo:            s.GetStores().PlanRepo,
		SubscriptionRepo:    s.GetStores().SubscriptionRepo,
		ProrationCalculator: proration.NewCalculator(),
		EventPublisher:      s.GetPublisher(),
	})
}

func (s *PlanServiceSuite) seedPlan(id string, netPrice string) {
	p := &plan.Plan{
		ID:              id,
		Name:            id,
		LookupKey:       id,
		Currency:        "eur",
		NetMonthlyPrice: decimal.RequireFromString(netPrice),
		CycleDays:       30,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
}

func (s *PlanServiceSuite) TestGetPlan() {
	s.seedPlan("plan_inicial", "49")

	resp, err := s.service.GetPlan(s.GetContext(), "plan_inicial")
	s.NoError(err)
	s.Equal("plan_inicial", resp.ID)

	_, err = s.service.GetPlan(s.GetContext(), "plan_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetPlan(s.GetContext(), "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestListPlansOrderedByPrice() {
	s.seedPlan("plan_profesional", "99")
	s.seedPlan("plan_inicial", "49")
	s.seedPlan("plan_personalizado", "199")

	resp, err := s.service.ListPlans(s.GetContext())
	s.NoError(err)
	s.Equal(3, resp.Total)
	s.Equal("plan_inicial", resp.Items[0].ID)
	s.Equal("plan_profesional", resp.Items[1].ID)
	s.Equal("plan_personalizado", resp.Items[2].ID)
}
