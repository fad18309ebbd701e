package lifecycle

import (
	"context"

	"outreach/internal/db"
	"outreach/internal/models"
)

// Tx is the storage surface lifecycle operations use inside one transaction.
// Reads observe writes made earlier in the same transaction.
type Tx interface {
	CartEntries(ctx context.Context, sessionID string) ([]models.CartEntry, error)
	// ExistingProspects returns the subset of keys already in prospecting.
	ExistingProspects(ctx context.Context, keys []models.ProspectKey) ([]models.ProspectKey, error)
	// InsertProspects inserts pending records and returns the keys actually
	// created. Keys that already exist are skipped, not errors.
	InsertProspects(ctx context.Context, keys []models.ProspectKey) ([]models.ProspectKey, error)
	ClearCart(ctx context.Context, sessionID string) (int64, error)

	ProspectsByIDs(ctx context.Context, ids []int64) ([]models.ProspectingRecord, error)
	InsertArchive(ctx context.Context, rec *models.ArchiveRecord) error
	// BlacklistDomain adds domain if absent and reports whether it was added.
	BlacklistDomain(ctx context.Context, domain string) (bool, error)
	DeleteProspects(ctx context.Context, ids []int64) (int64, error)
}

// Store runs transactions. InTx commits when fn returns nil and rolls back
// otherwise.
type Store interface {
	CartSize(ctx context.Context, sessionID string) (int64, error)
	InTx(ctx context.Context, fn func(Tx) error) error
}

type pgStore struct {
	db *db.DB
}

// NewPostgresStore adapts the database to the lifecycle Store.
func NewPostgresStore(database *db.DB) Store {
	return &pgStore{db: database}
}

func (s *pgStore) CartSize(ctx context.Context, sessionID string) (int64, error) {
	return s.db.CountCart(ctx, sessionID)
}

func (s *pgStore) InTx(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		return fn(tx)
	})
}
