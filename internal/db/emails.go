package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"outreach/internal/models"
)

// emailColumns is the standard column list for email queries, including the
// archived metrics joined through emailFrom.
const emailColumns = `e.id, e.domain, e.campaign_name, e.original_prospecting_id, e.status,
	e.analysis_json, e.analyzed_at, e.analysis_error, e.accepts_guest_posts, e.primary_email,
	e.link_value_score, e.outreach_priority, e.outreach_status, e.contacted_at,
	e.response_received_at, e.notes, e.created_at, e.updated_at,
	a.domain_rating, a.org_traffic, a.org_keywords`

// emailFrom joins each email with at most one archive snapshot, the latest.
const emailFrom = `outreach_emails e
	LEFT JOIN LATERAL (
		SELECT domain_rating, org_traffic, org_keywords
		FROM outreach_archive
		WHERE original_prospecting_id = e.original_prospecting_id
		ORDER BY archived_at DESC, id DESC
		LIMIT 1
	) a ON TRUE`

// scanEmailRow scans a row into an EmailRow.
func scanEmailRow(row pgx.Row) (models.EmailRow, error) {
	var r models.EmailRow
	var analysis []byte
	err := row.Scan(
		&r.ID,
		&r.Domain,
		&r.CampaignName,
		&r.OriginalProspectingID,
		&r.Status,
		&analysis,
		&r.AnalyzedAt,
		&r.AnalysisError,
		&r.AcceptsGuestPosts,
		&r.PrimaryEmail,
		&r.LinkValueScore,
		&r.OutreachPriority,
		&r.OutreachStatus,
		&r.ContactedAt,
		&r.ResponseReceivedAt,
		&r.Notes,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.DomainRating,
		&r.OrgTraffic,
		&r.OrgKeywords,
	)
	r.Analysis = analysis
	return r, err
}

// GetEmail retrieves an email record by id.
func (d *DB) GetEmail(ctx context.Context, id int64) (*models.EmailRow, error) {
	r, err := scanEmailRow(d.Pool.QueryRow(ctx,
		`SELECT `+emailColumns+` FROM `+emailFrom+` WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmailNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountEmails returns the total number of email records.
func (d *DB) CountEmails(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM outreach_emails`).Scan(&n)
	return n, err
}

// EmailCampaigns returns the distinct campaign names among email records.
func (d *DB) EmailCampaigns(ctx context.Context) ([]string, error) {
	return d.strings(ctx, `
		SELECT DISTINCT campaign_name FROM outreach_emails
		WHERE campaign_name IS NOT NULL AND campaign_name <> ''
		ORDER BY campaign_name
	`)
}

// generationColumns is the standard column list for generation queries.
const generationColumns = `id, email_id, domain, prompt_used, generated_email, generated_at`

// scanGeneration scans a row into an EmailGeneration.
func scanGeneration(row pgx.Row) (*models.EmailGeneration, error) {
	var g models.EmailGeneration
	err := row.Scan(&g.ID, &g.EmailID, &g.Domain, &g.PromptUsed, &g.GeneratedEmail, &g.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGenerationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// LatestGeneration returns the most recent draft for an email, or
// ErrGenerationNotFound when none exists.
func (d *DB) LatestGeneration(ctx context.Context, emailID int64) (*models.EmailGeneration, error) {
	return scanGeneration(d.Pool.QueryRow(ctx, `
		SELECT `+generationColumns+` FROM outreach_email_generations
		WHERE email_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`, emailID))
}

// CreateGeneration stores a generated draft.
func (d *DB) CreateGeneration(ctx context.Context, g *models.EmailGeneration) error {
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO outreach_email_generations (email_id, domain, prompt_used, generated_email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, generated_at
	`, g.EmailID, g.Domain, g.PromptUsed, g.GeneratedEmail).Scan(&g.ID, &g.GeneratedAt)
	if err != nil {
		return fmt.Errorf("create generation: %w", err)
	}
	return nil
}

// UpdateLatestGeneration edits the most recent draft for an email. Nil
// fields are left unchanged.
func (d *DB) UpdateLatestGeneration(ctx context.Context, emailID int64, generatedEmail, promptUsed *string) (*models.EmailGeneration, error) {
	return scanGeneration(d.Pool.QueryRow(ctx, `
		UPDATE outreach_email_generations SET
			generated_email = COALESCE($2, generated_email),
			prompt_used = COALESCE($3, prompt_used),
			generated_at = NOW()
		WHERE id = (
			SELECT id FROM outreach_email_generations
			WHERE email_id = $1
			ORDER BY generated_at DESC, id DESC
			LIMIT 1
		)
		RETURNING `+generationColumns,
		emailID, generatedEmail, promptUsed,
	))
}
