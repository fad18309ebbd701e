package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"outreach/internal/models"
)

// prospectColumns is the standard column list for prospecting queries.
const prospectColumns = `id, domain, campaign_name, campaign_id, domain_rating, org_traffic, org_keywords,
	org_cost, paid_traffic, paid_keywords, paid_cost, org_traffic_top_by_country,
	processing_status, error_message, created_at, updated_at`

// scanProspect scans a row into a ProspectingRecord.
func scanProspect(row pgx.Row) (models.ProspectingRecord, error) {
	var p models.ProspectingRecord
	var top []byte
	err := row.Scan(
		&p.ID,
		&p.Domain,
		&p.CampaignName,
		&p.CampaignID,
		&p.DomainRating,
		&p.OrgTraffic,
		&p.OrgKeywords,
		&p.OrgCost,
		&p.PaidTraffic,
		&p.PaidKeywords,
		&p.PaidCost,
		&top,
		&p.ProcessingStatus,
		&p.ErrorMessage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.TopByCountry = top
	return p, err
}

// splitKeys turns prospect keys into parallel arrays for unnest.
func splitKeys(keys []models.ProspectKey) ([]string, []int64) {
	domains := make([]string, len(keys))
	campaigns := make([]int64, len(keys))
	for i, k := range keys {
		domains[i] = k.Domain
		campaigns[i] = k.CampaignID
	}
	return domains, campaigns
}

func scanKeys(rows pgx.Rows) ([]models.ProspectKey, error) {
	defer rows.Close()

	var keys []models.ProspectKey
	for rows.Next() {
		var k models.ProspectKey
		if err := rows.Scan(&k.Domain, &k.CampaignID); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ExistingProspects returns the keys that already have a prospecting record.
func (t *Tx) ExistingProspects(ctx context.Context, keys []models.ProspectKey) ([]models.ProspectKey, error) {
	domains, campaigns := splitKeys(keys)
	rows, err := t.tx.Query(ctx, `
		SELECT p.domain, p.campaign_id
		FROM outreach_prospecting p
		JOIN unnest($1::text[], $2::bigint[]) AS k(domain, campaign_id)
			ON p.domain = k.domain AND p.campaign_id = k.campaign_id
	`, domains, campaigns)
	if err != nil {
		return nil, err
	}
	return scanKeys(rows)
}

// InsertProspects creates pending prospecting records for the keys and
// returns the keys actually inserted. Keys created concurrently by another
// transaction are skipped by the unique (domain, campaign_id) constraint.
func (t *Tx) InsertProspects(ctx context.Context, keys []models.ProspectKey) ([]models.ProspectKey, error) {
	domains, campaigns := splitKeys(keys)
	rows, err := t.tx.Query(ctx, `
		INSERT INTO outreach_prospecting (domain, campaign_id, campaign_name, processing_status)
		SELECT k.domain, k.campaign_id, c.name, 'pending'
		FROM unnest($1::text[], $2::bigint[]) AS k(domain, campaign_id)
		LEFT JOIN outreach_campaigns c ON c.id = k.campaign_id
		ON CONFLICT (domain, campaign_id) DO NOTHING
		RETURNING domain, campaign_id
	`, domains, campaigns)
	if err != nil {
		return nil, err
	}
	return scanKeys(rows)
}

// ProspectsByIDs loads the prospecting records with the given ids, in id order.
func (t *Tx) ProspectsByIDs(ctx context.Context, ids []int64) ([]models.ProspectingRecord, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+prospectColumns+` FROM outreach_prospecting WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ProspectingRecord
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// DeleteProspects deletes the prospecting records with the given ids.
func (t *Tx) DeleteProspects(ctx context.Context, ids []int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM outreach_prospecting WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ProspectingStats counts prospecting records by processing status.
func (d *DB) ProspectingStats(ctx context.Context) (models.ProspectingStats, error) {
	var s models.ProspectingStats
	err := d.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE processing_status = 'pending'),
			COUNT(*) FILTER (WHERE processing_status = 'processing'),
			COUNT(*) FILTER (WHERE processing_status = 'completed'),
			COUNT(*) FILTER (WHERE processing_status = 'failed')
		FROM outreach_prospecting
	`).Scan(&s.Total, &s.Pending, &s.Processing, &s.Completed, &s.Failed)
	if err != nil {
		return s, fmt.Errorf("prospecting stats: %w", err)
	}
	return s, nil
}

// ProspectingCampaigns returns the distinct campaign names in prospecting.
func (d *DB) ProspectingCampaigns(ctx context.Context) ([]string, error) {
	return d.strings(ctx, `
		SELECT DISTINCT campaign_name FROM outreach_prospecting
		WHERE campaign_name IS NOT NULL AND campaign_name <> ''
		ORDER BY campaign_name
	`)
}

// ProspectingTopCountries returns the distinct upper-cased country codes
// that lead a record's country traffic list.
func (d *DB) ProspectingTopCountries(ctx context.Context) ([]string, error) {
	return d.strings(ctx, `
		SELECT DISTINCT UPPER(BTRIM(org_traffic_top_by_country->0->>0)) AS code
		FROM outreach_prospecting
		WHERE jsonb_typeof(org_traffic_top_by_country) = 'array'
			AND jsonb_typeof(org_traffic_top_by_country->0) = 'array'
			AND jsonb_typeof(org_traffic_top_by_country->0->0) = 'string'
			AND BTRIM(org_traffic_top_by_country->0->>0) <> ''
		ORDER BY code
	`)
}

// CountProspectsForCampaign counts a campaign's prospecting records, either
// all of them or only those in the given status.
func (d *DB) CountProspectsForCampaign(ctx context.Context, campaignID int64, status string) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM outreach_prospecting
		WHERE campaign_id = $1 AND ($2 = '' OR processing_status = $2)
	`, campaignID, status).Scan(&n)
	return n, err
}

// strings runs a single-column text query.
func (d *DB) strings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
