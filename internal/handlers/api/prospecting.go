package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"outreach/internal/models"
)

// ProspectingHandler serves the prospecting ("metrics") view.
type ProspectingHandler struct {
	prospects ProspectingService
	lifecycle LifecycleService
}

// NewProspectingHandler creates a new API prospecting handler.
func NewProspectingHandler(prospects ProspectingService, lifecycle LifecycleService) *ProspectingHandler {
	return &ProspectingHandler{prospects: prospects, lifecycle: lifecycle}
}

// List returns one page of prospecting records.
func (h *ProspectingHandler) List(c fiber.Ctx) error {
	page, err := h.prospects.Prospects(c.Context(), listParams(c))
	if err != nil {
		return jsonFailure(c, err, "failed to list prospecting records")
	}
	return jsonSuccess(c, page)
}

// Stats returns record counts by processing status.
func (h *ProspectingHandler) Stats(c fiber.Ctx) error {
	stats, err := h.prospects.Stats(c.Context())
	if err != nil {
		return jsonFailure(c, err, "failed to load prospecting stats")
	}
	return jsonSuccess(c, stats)
}

// FilterOptions returns the values the prospecting filters accept.
func (h *ProspectingHandler) FilterOptions(c fiber.Ctx) error {
	opts, err := h.prospects.ProspectingFilterOptions(c.Context())
	if err != nil {
		return jsonFailure(c, err, "failed to load filter options")
	}
	return jsonSuccess(c, opts)
}

// Processing returns whether enrichment is paused.
func (h *ProspectingHandler) Processing(c fiber.Ctx) error {
	state, err := h.prospects.ProcessingState(c.Context())
	if err != nil {
		return jsonFailure(c, err, "failed to load processing state")
	}
	return jsonSuccess(c, state)
}

// ToggleProcessing flips the pause switch.
func (h *ProspectingHandler) ToggleProcessing(c fiber.Ctx) error {
	state, err := h.prospects.ToggleProcessing(c.Context())
	if err != nil {
		return jsonFailure(c, err, "failed to toggle processing")
	}
	return jsonSuccess(c, state)
}

// BlacklistProcessed archives, blacklists and removes the given records.
func (h *ProspectingHandler) BlacklistProcessed(c fiber.Ctx) error {
	var body struct {
		Domains []models.RetireTarget `json:"domains"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.Domains == nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "domains must be an array")
	}
	if msg := checkRetireTargets(body.Domains); msg != "" {
		return jsonError(c, fiber.StatusUnprocessableEntity, msg)
	}

	result, err := h.lifecycle.Retire(c.Context(), body.Domains)
	if err != nil {
		return jsonFailure(c, err, "failed to blacklist processed domains")
	}
	return jsonSuccess(c, result)
}

func checkRetireTargets(targets []models.RetireTarget) string {
	for i, t := range targets {
		if t.ID < 1 {
			return fmt.Sprintf("domains[%d]: each domain must have a positive integer id", i)
		}
		if strings.TrimSpace(t.Domain) == "" {
			return fmt.Sprintf("domains[%d]: each domain must have a non-empty domain string", i)
		}
	}
	return ""
}
