package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"outreach/internal/models"
)

// campaignColumns is the standard column list for campaign queries.
const campaignColumns = `id, name, original_keywords, expanded_keywords, is_active, status,
	blacklist_campaign_enabled, blacklist_global_enabled, cron_add_count, created_at, updated_at`

// scanCampaign scans a row into a Campaign.
func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.OriginalKeywords,
		&c.ExpandedKeywords,
		&c.IsActive,
		&c.Status,
		&c.BlacklistCampaignEnabled,
		&c.BlacklistGlobalEnabled,
		&c.CronAddCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCampaigns returns every campaign ordered by id.
func (d *DB) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := d.Pool.Query(ctx, `SELECT `+campaignColumns+` FROM outreach_campaigns ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// GetCampaign retrieves a campaign by id.
func (d *DB) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	return scanCampaign(d.Pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM outreach_campaigns WHERE id = $1`, id))
}

// deactivateOthers clears is_active on every campaign except keep.
func deactivateOthers(ctx context.Context, q querier, keep int64) error {
	_, err := q.Exec(ctx, `
		UPDATE outreach_campaigns SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND id <> $1
	`, keep)
	return err
}

// CreateCampaign inserts a campaign. Creating an active campaign deactivates
// every other campaign in the same transaction.
func (d *DB) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	return d.WithTx(ctx, func(tx *Tx) error {
		if c.IsActive {
			if err := deactivateOthers(ctx, tx.tx, 0); err != nil {
				return fmt.Errorf("deactivate campaigns: %w", err)
			}
		}

		created, err := scanCampaign(tx.tx.QueryRow(ctx, `
			INSERT INTO outreach_campaigns (
				name, original_keywords, expanded_keywords, is_active, status,
				blacklist_campaign_enabled, blacklist_global_enabled, cron_add_count
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+campaignColumns,
			c.Name,
			c.OriginalKeywords,
			c.ExpandedKeywords,
			c.IsActive,
			c.Status,
			c.BlacklistCampaignEnabled,
			c.BlacklistGlobalEnabled,
			c.CronAddCount,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateCampaign
			}
			return err
		}
		*c = *created
		return nil
	})
}

// SeedCampaign inserts a campaign unless one with the same name exists.
// It never changes which campaign is active.
func (d *DB) SeedCampaign(ctx context.Context, c *models.Campaign) (bool, error) {
	tag, err := d.Pool.Exec(ctx, `
		INSERT INTO outreach_campaigns (name, original_keywords, expanded_keywords, status, cron_add_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`, c.Name, c.OriginalKeywords, c.ExpandedKeywords, c.Status, c.CronAddCount)
	if err != nil {
		return false, fmt.Errorf("failed to seed campaign %s: %w", c.Name, err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateCampaign applies a partial update. Activating a campaign deactivates
// every other campaign in the same transaction.
func (d *DB) UpdateCampaign(ctx context.Context, id int64, p models.CampaignPatch) (*models.Campaign, error) {
	var updated *models.Campaign
	err := d.WithTx(ctx, func(tx *Tx) error {
		if p.IsActive != nil && *p.IsActive {
			if err := deactivateOthers(ctx, tx.tx, id); err != nil {
				return fmt.Errorf("deactivate campaigns: %w", err)
			}
		}

		c, err := scanCampaign(tx.tx.QueryRow(ctx, `
			UPDATE outreach_campaigns SET
				expanded_keywords = COALESCE($2, expanded_keywords),
				is_active = COALESCE($3, is_active),
				status = COALESCE($4, status),
				blacklist_campaign_enabled = COALESCE($5, blacklist_campaign_enabled),
				blacklist_global_enabled = COALESCE($6, blacklist_global_enabled),
				cron_add_count = COALESCE($7, cron_add_count),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+campaignColumns,
			id,
			p.ExpandedKeywords,
			p.IsActive,
			p.Status,
			p.BlacklistCampaignEnabled,
			p.BlacklistGlobalEnabled,
			p.CronAddCount,
		))
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCampaign deletes a campaign by id.
func (d *DB) DeleteCampaign(ctx context.Context, id int64) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM outreach_campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCampaignNotFound
	}
	return nil
}
