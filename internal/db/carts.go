package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"outreach/internal/models"
)

// cartColumns is the standard column list for cart queries.
const cartColumns = `id, session_id, domain, keywords, similarity_score, spider_id, campaign_id, added_at`

// scanCartEntry scans a row into a CartEntry.
func scanCartEntry(row pgx.Row) (models.CartEntry, error) {
	var e models.CartEntry
	err := row.Scan(
		&e.ID,
		&e.SessionID,
		&e.Domain,
		&e.Keywords,
		&e.SimilarityScore,
		&e.SpiderID,
		&e.CampaignID,
		&e.AddedAt,
	)
	return e, err
}

// CountCart returns the number of cart entries held by a session.
func (d *DB) CountCart(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outreach_cart WHERE session_id = $1`, sessionID,
	).Scan(&n)
	return n, err
}

// CountCartForCampaign returns the session's cart entries for one campaign.
func (d *DB) CountCartForCampaign(ctx context.Context, sessionID string, campaignID int64) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outreach_cart WHERE session_id = $1 AND campaign_id = $2`,
		sessionID, campaignID,
	).Scan(&n)
	return n, err
}

// DeleteCartEntries removes the given entries from the session's cart.
// Entries owned by other sessions are left alone.
func (d *DB) DeleteCartEntries(ctx context.Context, sessionID string, ids []int64) (int64, error) {
	tag, err := d.Pool.Exec(ctx,
		`DELETE FROM outreach_cart WHERE session_id = $1 AND id = ANY($2)`,
		sessionID, ids,
	)
	if err != nil {
		return 0, fmt.Errorf("delete cart entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddToCart stages a domain for the session. It reports false when the
// domain is already in the session's cart.
func (d *DB) AddToCart(ctx context.Context, e *models.CartEntry) (bool, error) {
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO outreach_cart (session_id, domain, keywords, similarity_score, spider_id, campaign_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id, domain) DO NOTHING
		RETURNING id, added_at
	`, e.SessionID, e.Domain, e.Keywords, e.SimilarityScore, e.SpiderID, e.CampaignID,
	).Scan(&e.ID, &e.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CartEntries returns every cart entry held by a session.
func (t *Tx) CartEntries(ctx context.Context, sessionID string) ([]models.CartEntry, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+cartColumns+` FROM outreach_cart WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.CartEntry
	for rows.Next() {
		e, err := scanCartEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearCart deletes every cart entry held by a session.
func (t *Tx) ClearCart(ctx context.Context, sessionID string) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM outreach_cart WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
