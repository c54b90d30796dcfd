package handler

import (
	"context"
	"log/slog"
	"net/http"

	"marketplace-api/internal/analytics"
	"marketplace-api/internal/apperror"
	"marketplace-api/internal/dto"

	"github.com/labstack/echo/v4"
)

type EventDispatcher interface {
	Dispatch(ctx context.Context, e analytics.Event) (bool, error)
}

type AnalyticsHandler struct {
	dispatcher EventDispatcher
	logger     *slog.Logger
}

func NewAnalyticsHandler(dispatcher EventDispatcher, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// TrackEvent always answers 202 for a well-formed event. Delivery failures
// are logged, not surfaced to the browser.
func (h *AnalyticsHandler) TrackEvent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AnalyticsEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sent, err := h.dispatcher.Dispatch(ctx, req.ToEvent())
	if err != nil {
		if apperror.IsValidation(err) {
			return httpError(err)
		}
		h.logger.Warn("analytics dispatch failed", "event", req.Name, "error", err)
	}

	return c.JSON(http.StatusAccepted, dto.AnalyticsEventResponse{
		Accepted: true,
		Sent:     sent,
	})
}
