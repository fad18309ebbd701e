package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"outreach/internal/models"
	"outreach/internal/query"
)

// Page is one page of rows plus the filtered row count before any cap.
type Page[T any] struct {
	Items   []T
	Matched int64
	Query   query.Query
}

// list runs a built query's count and page statements concurrently.
func list[T any](ctx context.Context, d *DB, q query.Query, scan func(pgx.Row) (T, error)) (Page[T], error) {
	page := Page[T]{Items: []T{}, Query: q}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := d.Pool.QueryRow(gctx, q.Count, q.Args...).Scan(&page.Matched); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		return nil
	})
	if !q.Empty {
		g.Go(func() error {
			rows, err := d.Pool.Query(gctx, q.Select, q.Args...)
			if err != nil {
				return fmt.Errorf("select: %w", err)
			}
			defer rows.Close()
			for rows.Next() {
				item, err := scan(rows)
				if err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				page.Items = append(page.Items, item)
			}
			return rows.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}
	return page, nil
}

// ListCart returns one page of a session's cart.
func (d *DB) ListCart(ctx context.Context, sessionID string, p query.Params) (Page[models.CartEntry], error) {
	q := CartCollection.Build(p, query.Eq("c.session_id", sessionID))
	return list(ctx, d, q, scanCartEntry)
}

// ListProspects returns one page of prospecting records.
func (d *DB) ListProspects(ctx context.Context, p query.Params) (Page[models.ProspectingRecord], error) {
	return list(ctx, d, ProspectCollection.Build(p), scanProspect)
}

// ListEmails returns one page of email records.
func (d *DB) ListEmails(ctx context.Context, p query.Params) (Page[models.EmailRow], error) {
	return list(ctx, d, EmailCollection.Build(p), scanEmailRow)
}
