package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// BlacklistDomain adds a domain to the global blacklist if it is absent and
// reports whether a row was created.
func (t *Tx) BlacklistDomain(ctx context.Context, domain string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO outreach_global_blacklist (domain)
		VALUES ($1)
		ON CONFLICT (domain) DO NOTHING
	`, domain)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IsBlacklisted reports whether a domain is on the global blacklist.
func (d *DB) IsBlacklisted(ctx context.Context, domain string) (bool, error) {
	var one int
	err := d.Pool.QueryRow(ctx,
		`SELECT 1 FROM outreach_global_blacklist WHERE domain = $1`, domain,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
