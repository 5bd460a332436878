package handler

import (
	"net/http"

	"podm-backend/internal/dto"
	"podm-backend/internal/middleware"
	"podm-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req struct {
		RecipientID string `json:"recipient_id"`
		Body        string `json:"body"`
		PPVPrice    *int64 `json:"ppv_price,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	msg, err := h.messageService.Send(ctx, caller, req.RecipientID, req.Body, req.PPVPrice)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) Broadcast(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req dto.BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.messageService.Broadcast(ctx, caller, &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}
