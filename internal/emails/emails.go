// Package emails serves single analyzed email records and their AI-drafted
// outreach emails.
package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"outreach/internal/db"
	"outreach/internal/listing"
	"outreach/internal/models"
	"outreach/internal/validation"
)

// Store is the email persistence the service needs.
type Store interface {
	GetEmail(ctx context.Context, id int64) (*models.EmailRow, error)
	LatestGeneration(ctx context.Context, emailID int64) (*models.EmailGeneration, error)
	CreateGeneration(ctx context.Context, g *models.EmailGeneration) error
	UpdateLatestGeneration(ctx context.Context, emailID int64, generatedEmail, promptUsed *string) (*models.EmailGeneration, error)
}

// Generator drafts an email from a complete prompt.
type Generator interface {
	GenerateEmail(ctx context.Context, prompt string) (string, error)
}

// Service implements the email detail and generation operations.
type Service struct {
	store Store
	gen   Generator
}

// NewService creates an email service.
func NewService(store Store, gen Generator) *Service {
	return &Service{store: store, gen: gen}
}

// Get returns an email with its reconciled facts, raw analysis document and
// latest draft, if any.
func (s *Service) Get(ctx context.Context, id int64) (*models.EmailDetail, error) {
	row, err := s.store.GetEmail(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.EmailDetail{
		EmailItem:     listing.EmailItem(*row),
		Status:        row.Status,
		Analysis:      row.Analysis,
		AnalysisError: row.AnalysisError,
		Notes:         row.Notes,
	}
	if !json.Valid(detail.Analysis) {
		detail.Analysis = nil
	}

	latest, err := s.store.LatestGeneration(ctx, id)
	switch {
	case err == nil:
		detail.LatestGeneration = latest
	case !errors.Is(err, db.ErrGenerationNotFound):
		return nil, fmt.Errorf("latest generation: %w", err)
	}
	return detail, nil
}

// Generate drafts an outreach email for the record and stores it. The
// analysis document is appended to the prompt; when it is empty the
// record's domain and campaign stand in. Nothing is stored when drafting
// fails.
func (s *Service) Generate(ctx context.Context, id int64, prompt string, analysis json.RawMessage) (*models.EmailGeneration, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, validation.NewError("prompt is required")
	}

	row, err := s.store.GetEmail(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := analysisPayload(row, analysis)
	if err != nil {
		return nil, err
	}

	text, err := s.gen.GenerateEmail(ctx, prompt+"\n\nWebsite analysis:\n"+payload)
	if err != nil {
		return nil, fmt.Errorf("generate email: %w", err)
	}

	g := &models.EmailGeneration{
		EmailID:        id,
		Domain:         row.Domain,
		PromptUsed:     prompt,
		GeneratedEmail: text,
	}
	if err := s.store.CreateGeneration(ctx, g); err != nil {
		return nil, err
	}
	slog.Info("email generated", "email_id", id, "domain", row.Domain, "generation_id", g.ID)
	return g, nil
}

func analysisPayload(row *models.EmailRow, analysis json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(analysis)
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		return "", validation.NewError("analysis must be a JSON object")
	}
	if isEmptyDocument(trimmed) {
		fallback := map[string]any{"domain": row.Domain, "campaign_name": row.CampaignName}
		out, err := json.MarshalIndent(fallback, "", "  ")
		return string(out), err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "", validation.NewError("analysis must be a JSON object")
	}
	return buf.String(), nil
}

func isEmptyDocument(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return len(obj) == 0
	}
	return string(raw) == "null"
}

// SaveGeneration edits the latest draft. Blank values are ignored; at least
// one of generatedEmail and promptUsed must be given.
func (s *Service) SaveGeneration(ctx context.Context, id int64, generatedEmail, promptUsed *string) (*models.EmailGeneration, error) {
	generatedEmail = nonBlank(generatedEmail)
	promptUsed = nonBlank(promptUsed)
	if generatedEmail == nil && promptUsed == nil {
		return nil, validation.NewError("generated_email or prompt_used is required")
	}
	return s.store.UpdateLatestGeneration(ctx, id, generatedEmail, promptUsed)
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
