package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
)

// EmailHandler serves analyzed emails and their AI drafts.
type EmailHandler struct {
	list   EmailListService
	drafts EmailDraftService
}

// NewEmailHandler creates a new API email handler.
func NewEmailHandler(list EmailListService, drafts EmailDraftService) *EmailHandler {
	return &EmailHandler{list: list, drafts: drafts}
}

// List returns one page of emails.
func (h *EmailHandler) List(c fiber.Ctx) error {
	page, err := h.list.Emails(c.Context(), listParams(c))
	if err != nil {
		return jsonFailure(c, err, "failed to list emails")
	}
	return jsonSuccess(c, page)
}

// FilterOptions returns the values the email filters accept.
func (h *EmailHandler) FilterOptions(c fiber.Ctx) error {
	opts, err := h.list.EmailFilterOptions(c.Context())
	if err != nil {
		return jsonFailure(c, err, "failed to load filter options")
	}
	return jsonSuccess(c, opts)
}

// Get returns one email with its analysis and latest draft.
func (h *EmailHandler) Get(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid email id")
	}

	detail, err := h.drafts.Get(c.Context(), id)
	if err != nil {
		return jsonFailure(c, err, "failed to fetch email")
	}
	return jsonSuccess(c, detail)
}

// Generate drafts a new outreach email.
func (h *EmailHandler) Generate(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid email id")
	}

	var body struct {
		Prompt   string          `json:"prompt"`
		Analysis json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	gen, err := h.drafts.Generate(c.Context(), id, body.Prompt, body.Analysis)
	if err != nil {
		return jsonFailure(c, err, "failed to generate email")
	}
	return jsonCreated(c, gen)
}

// SaveGeneration edits the latest draft.
func (h *EmailHandler) SaveGeneration(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid email id")
	}

	var body struct {
		GeneratedEmail *string `json:"generated_email"`
		PromptUsed     *string `json:"prompt_used"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	gen, err := h.drafts.SaveGeneration(c.Context(), id, body.GeneratedEmail, body.PromptUsed)
	if err != nil {
		return jsonFailure(c, err, "failed to save generated email")
	}
	return jsonSuccess(c, gen)
}
