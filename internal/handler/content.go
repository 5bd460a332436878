package handler

import (
	"net/http"

	"podm-backend/internal/dto"
	"podm-backend/internal/middleware"
	"podm-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type ContentHandler struct {
	contentService service.ContentService
}

func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req struct {
		Title      string `json:"title"`
		Body       string `json:"body"`
		Visibility string `json:"visibility"`
		PPVPrice   *int64 `json:"ppv_price,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	content, err := h.contentService.CreatePost(ctx, caller, req.Title, req.Body, req.Visibility, req.PPVPrice)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, content)
}

func (h *ContentHandler) AppendMedia(c echo.Context) error {
	ctx := c.Request().Context()

	caller, ok := middleware.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing caller")
	}

	var req dto.AppendMediaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.contentService.AppendMedia(ctx, caller, c.Param("id"), req.MediaURL, req.Version); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
