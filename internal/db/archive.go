package db

import (
	"context"

	"outreach/internal/models"
)

// InsertArchive writes an archive snapshot, filling in its id and archive time.
func (t *Tx) InsertArchive(ctx context.Context, rec *models.ArchiveRecord) error {
	var top any
	if len(rec.TopByCountry) > 0 {
		top = string(rec.TopByCountry)
	}
	return t.tx.QueryRow(ctx, `
		INSERT INTO outreach_archive (
			original_prospecting_id, domain, campaign_name, campaign_id,
			domain_rating, org_traffic, org_keywords, org_cost,
			paid_traffic, paid_keywords, paid_cost, org_traffic_top_by_country,
			processing_status, error_message, original_created_at, original_updated_at,
			archive_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13, $14, $15, $16, $17)
		RETURNING id, archived_at
	`,
		rec.OriginalProspectingID,
		rec.Domain,
		rec.CampaignName,
		rec.CampaignID,
		rec.DomainRating,
		rec.OrgTraffic,
		rec.OrgKeywords,
		rec.OrgCost,
		rec.PaidTraffic,
		rec.PaidKeywords,
		rec.PaidCost,
		top,
		rec.ProcessingStatus,
		rec.ErrorMessage,
		rec.OriginalCreatedAt,
		rec.OriginalUpdatedAt,
		rec.ArchiveReason,
	).Scan(&rec.ID, &rec.ArchivedAt)
}

// CountArchivedForCampaign counts the archive snapshots taken from a
// campaign's prospecting records.
func (d *DB) CountArchivedForCampaign(ctx context.Context, campaignID int64) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outreach_archive WHERE campaign_id = $1`, campaignID,
	).Scan(&n)
	return n, err
}
