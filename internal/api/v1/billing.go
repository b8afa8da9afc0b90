package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inmoval/billing/internal/api/dto"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/service"
)

type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		log:     log,
	}
}

// @Summary Preview a plan change
// @Description Quote the prorated cost of moving the tenant to another plan
// @Tags Billing
// @Produce json
// @Param plan_id query string true "Candidate plan ID"
// @Param seats query int false "Seat count for custom plans"
// @Success 200 {object} dto.ProrationQuoteResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/preview [get]
func (h *BillingHandler) PreviewChange(c *gin.Context) {
	var req dto.PreviewChangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PreviewChange(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Confirm a plan change
// @Description Recompute and apply the plan change from current state
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.ConfirmChangeRequest true "Plan change to apply"
// @Success 200 {object} dto.ChangeResultResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/change [post]
func (h *BillingHandler) ConfirmChange(c *gin.Context) {
	var req dto.ConfirmChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfirmChange(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get billing status
// @Description Derive the tenant's current billing state
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.BillingStatusResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/status [get]
func (h *BillingHandler) GetBillingStatus(c *gin.Context) {
	resp, err := h.service.GetBillingStatus(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Start a trial subscription
// @Description Create the signup trial subscription for the tenant
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.StartTrialRequest true "Trial plan lookup key"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/trial [post]
func (h *BillingHandler) StartTrial(c *gin.Context) {
	var req dto.StartTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.StartTrial(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
