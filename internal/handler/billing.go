package handler

import (
	"io"
	"net/http"

	"podm-backend/internal/dto"
	"podm-backend/internal/middleware"
	"podm-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type BillingHandler struct {
	billingService service.BillingService
}

func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) Tip(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req dto.TipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.billingService.Tip(ctx, caller, &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *BillingHandler) UnlockPost(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req dto.UnlockPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.billingService.UnlockPost(ctx, caller, req.ContentID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *BillingHandler) UnlockMessage(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req dto.UnlockMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.billingService.UnlockMessage(ctx, caller, req.MessageID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// StripeWebhook acknowledges everything except signature failures;
// error responses would make the gateway redeliver forever.
func (h *BillingHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.billingService.HandleWebhook(ctx, signature, body); err != nil {
		// invalid signature -> 400; store errors -> 500 so the
		// gateway redelivers once the store recovers
		return httpError(err)
	}

	return c.NoContent(http.StatusOK)
}
