package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"outreach/internal/middleware"
	"outreach/internal/models"
)

// CampaignHandler manages campaigns.
type CampaignHandler struct {
	campaigns CampaignService
}

// NewCampaignHandler creates a new API campaign handler.
func NewCampaignHandler(campaigns CampaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// List returns all campaigns.
func (h *CampaignHandler) List(c fiber.Ctx) error {
	list, err := h.campaigns.List(c.Context())
	if err != nil {
		return jsonFailure(c, err, "failed to list campaigns")
	}
	if list == nil {
		list = []models.Campaign{}
	}
	return jsonSuccess(c, list)
}

// Get returns a campaign with its counts. The cart count is the caller's.
func (h *CampaignHandler) Get(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid campaign id")
	}

	detail, err := h.campaigns.Get(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return jsonFailure(c, err, "failed to fetch campaign")
	}
	return jsonSuccess(c, detail)
}

// Create expands the keywords and stores a new campaign.
func (h *CampaignHandler) Create(c fiber.Ctx) error {
	var in models.CampaignInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	campaign, err := h.campaigns.Create(c.Context(), in)
	if err != nil {
		return jsonFailure(c, err, "failed to create campaign")
	}
	return jsonCreated(c, campaign)
}

// Update applies a partial update.
func (h *CampaignHandler) Update(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid campaign id")
	}

	var patch models.CampaignPatch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	campaign, err := h.campaigns.Update(c.Context(), id, patch)
	if err != nil {
		return jsonFailure(c, err, "failed to update campaign")
	}
	return jsonSuccess(c, campaign)
}

// Delete removes a campaign.
func (h *CampaignHandler) Delete(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid campaign id")
	}

	if err := h.campaigns.Delete(c.Context(), id); err != nil {
		return jsonFailure(c, err, "failed to delete campaign")
	}
	return jsonSuccess(c, fiber.Map{"deleted": id})
}
