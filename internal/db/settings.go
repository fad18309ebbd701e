package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ProcessingPausedKey is the settings key of the enrichment pause switch.
const ProcessingPausedKey = "processing_paused"

// Setting returns a settings value and whether it exists.
func (d *DB) Setting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.Pool.QueryRow(ctx,
		`SELECT setting_value FROM outreach_settings WHERE setting_key = $1`, key,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// ProcessingPaused reports whether enrichment processing is paused.
// A missing setting means running.
func (d *DB) ProcessingPaused(ctx context.Context) (bool, error) {
	v, ok, err := d.Setting(ctx, ProcessingPausedKey)
	if err != nil || !ok {
		return false, err
	}
	return v == "1", nil
}

// ToggleProcessingPaused flips the pause switch in a single statement and
// returns the new state. A missing setting is treated as running, so the
// first toggle pauses.
func (d *DB) ToggleProcessingPaused(ctx context.Context) (bool, error) {
	var v string
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO outreach_settings (setting_key, setting_value)
		VALUES ($1, '1')
		ON CONFLICT (setting_key) DO UPDATE
			SET setting_value = CASE WHEN outreach_settings.setting_value = '1' THEN '0' ELSE '1' END,
				updated_at = NOW()
		RETURNING setting_value
	`, ProcessingPausedKey).Scan(&v)
	if err != nil {
		return false, err
	}
	return v == "1", nil
}
