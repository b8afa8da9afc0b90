package dto

import (
	"github.com/inmoval/billing/internal/domain/plan"
)

// PlanResponse represents a catalog plan in API responses
type PlanResponse struct {
	*plan.Plan
}

// ListPlansResponse represents the response for listing plans
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}
