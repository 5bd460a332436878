package handler

import (
	"net/http"
	"time"

	"podm-backend/internal/dto"
	"podm-backend/internal/middleware"
	"podm-backend/internal/model"
	"podm-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req dto.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	sub, err := h.subscriptionService.Subscribe(ctx, caller, req.TierID, req.PaymentMethodRef)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, toSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	sub, err := h.subscriptionService.Cancel(ctx, caller, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Resubscribe(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	sub, err := h.subscriptionService.Resubscribe(ctx, caller, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	active, err := h.subscriptionService.HasAccess(ctx, caller, c.Param("creatorID"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"active": active,
	})
}

func (h *SubscriptionHandler) ListTiers(c echo.Context) error {
	ctx := c.Request().Context()

	tiers, err := h.subscriptionService.ListTiers(ctx, c.Param("creatorID"))
	if err != nil {
		return httpError(err)
	}

	resp := make([]*dto.TierResponse, 0, len(tiers))
	for _, tier := range tiers {
		resp = append(resp, &dto.TierResponse{
			ID:       tier.ID,
			Name:     tier.Name,
			Amount:   tier.Amount,
			Currency: tier.Currency,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func toSubscriptionResponse(sub *model.Subscription) *dto.SubscriptionResponse {
	resp := &dto.SubscriptionResponse{
		ID:        sub.ID,
		CreatorID: sub.CreatorID,
		TierID:    sub.TierID,
		Status:    sub.Status,
		StartDate: sub.StartDate.Format(time.RFC3339),
	}
	if sub.EndDate != nil {
		s := sub.EndDate.Format(time.RFC3339)
		resp.EndDate = &s
	}
	if sub.NextBillingAt != nil {
		s := sub.NextBillingAt.Format(time.RFC3339)
		resp.NextBillingAt = &s
	}
	return resp
}
