package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"outreach/internal/ai"
	"outreach/internal/campaigns"
	"outreach/internal/db"
	"outreach/internal/lifecycle"
	"outreach/internal/query"
	"outreach/internal/validation"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated returns a 201 response with data wrapped in the standard envelope.
func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// jsonFailure maps a service error to a response. Unknown errors are logged
// with a request id and answered with fallback.
func jsonFailure(c fiber.Ctx, err error, fallback string) error {
	if msg, ok := validation.Message(err); ok {
		return jsonError(c, fiber.StatusUnprocessableEntity, msg)
	}

	switch {
	case errors.Is(err, lifecycle.ErrMissingSession):
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, db.ErrCampaignNotFound),
		errors.Is(err, db.ErrEmailNotFound),
		errors.Is(err, db.ErrGenerationNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrDuplicateCampaign):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, ai.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "AI text generation is not configured")
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, campaigns.ErrEmptyExpansion):
		slog.Warn("ai request failed", "path", c.Path(), "error", err)
		return jsonError(c, fiber.StatusBadGateway, fallback)
	}

	requestID := uuid.NewString()
	slog.Error(fallback, "request_id", requestID, "method", c.Method(), "path", c.Path(), "error", err)
	c.Set(fiber.HeaderXRequestID, requestID)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":     "error",
		"error":      fallback,
		"request_id": requestID,
	})
}

// listParams returns the raw query string as list parameters.
func listParams(c fiber.Ctx) query.Params {
	return query.ParseParams(string(c.Request().URI().QueryString()))
}

// pathID parses a positive integer path parameter.
func pathID(c fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
