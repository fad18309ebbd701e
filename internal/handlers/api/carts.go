package api

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"outreach/internal/middleware"
)

// CartHandler serves the caller's cart.
type CartHandler struct {
	carts     CartService
	lifecycle LifecycleService
}

// NewCartHandler creates a new API cart handler.
func NewCartHandler(carts CartService, lifecycle LifecycleService) *CartHandler {
	return &CartHandler{carts: carts, lifecycle: lifecycle}
}

// List returns one page of the caller's cart.
func (h *CartHandler) List(c fiber.Ctx) error {
	page, err := h.carts.Carts(c.Context(), middleware.UserID(c), listParams(c))
	if err != nil {
		return jsonFailure(c, err, "failed to list cart")
	}
	return jsonSuccess(c, page)
}

// Count returns the number of cart entries for ?campaign_id.
func (h *CartHandler) Count(c fiber.Ctx) error {
	campaignID, err := strconv.ParseInt(c.Query("campaign_id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "campaign_id must be a positive integer")
	}

	count, err := h.carts.CartCount(c.Context(), middleware.UserID(c), campaignID)
	if err != nil {
		return jsonFailure(c, err, "failed to count cart entries")
	}
	return jsonSuccess(c, count)
}

// BulkDelete removes the given entries from the caller's cart.
func (h *CartHandler) BulkDelete(c fiber.Ctx) error {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "ids must be a non-empty array of positive integers")
	}

	deleted, err := h.carts.DeleteCartEntries(c.Context(), middleware.UserID(c), body.IDs)
	if err != nil {
		return jsonFailure(c, err, "failed to delete cart entries")
	}
	return jsonSuccess(c, deleted)
}

// Process promotes the caller's cart into prospecting.
func (h *CartHandler) Process(c fiber.Ctx) error {
	result, err := h.lifecycle.Promote(c.Context(), middleware.UserID(c))
	if err != nil {
		return jsonFailure(c, err, "failed to process cart")
	}
	return jsonSuccess(c, result)
}
