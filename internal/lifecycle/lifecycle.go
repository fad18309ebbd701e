// Package lifecycle moves domains between cart, prospecting, archive and the
// global blacklist. Each operation is a single transaction.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"outreach/internal/metrics"
	"outreach/internal/models"
	"outreach/internal/validation"
)

// DefaultArchiveReason is recorded on archive rows when none is configured.
const DefaultArchiveReason = "blacklisted_processed"

// ErrMissingSession is returned when an operation needs a session id.
var ErrMissingSession = errors.New("session id is required")

// Service runs the lifecycle transitions.
type Service struct {
	store         Store
	archiveReason string
}

// NewService creates a lifecycle service. An empty reason uses
// DefaultArchiveReason.
func NewService(store Store, archiveReason string) *Service {
	if archiveReason == "" {
		archiveReason = DefaultArchiveReason
	}
	return &Service{store: store, archiveReason: archiveReason}
}

// Promote moves the session's cart into prospecting and empties the cart.
// Entries without a campaign are dropped and not counted. Entries whose
// domain normalizes to nothing, repeat an earlier entry, or already exist in
// prospecting are counted as skipped.
func (s *Service) Promote(ctx context.Context, sessionID string) (models.PromoteResult, error) {
	result := models.PromoteResult{InsertedPerCampaign: []models.CampaignCount{}}
	if sessionID == "" {
		return result, ErrMissingSession
	}

	size, err := s.store.CartSize(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("count cart: %w", err)
	}
	if size == 0 {
		return result, nil
	}

	err = s.store.InTx(ctx, func(tx Tx) error {
		entries, err := tx.CartEntries(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		keys, eligible := promotionKeys(entries)
		if len(keys) > 0 {
			existing, err := tx.ExistingProspects(ctx, keys)
			if err != nil {
				return fmt.Errorf("check existing prospects: %w", err)
			}
			keys = without(keys, existing)
		}

		var created []models.ProspectKey
		if len(keys) > 0 {
			created, err = tx.InsertProspects(ctx, keys)
			if err != nil {
				return fmt.Errorf("insert prospects: %w", err)
			}
		}

		if _, err := tx.ClearCart(ctx, sessionID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		result.Inserted = len(created)
		result.Skipped = eligible - len(created)
		result.InsertedPerCampaign = perCampaign(created)
		return nil
	})
	if err != nil {
		return models.PromoteResult{InsertedPerCampaign: []models.CampaignCount{}}, err
	}

	metrics.ObservePromotion(result.Inserted, result.Skipped)
	slog.Info("cart promoted", "session", sessionID, "inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}

// promotionKeys normalizes cart entries into unique prospect keys. eligible
// counts every entry that has a campaign.
func promotionKeys(entries []models.CartEntry) (keys []models.ProspectKey, eligible int) {
	seen := make(map[models.ProspectKey]bool, len(entries))
	for _, e := range entries {
		if e.CampaignID == nil {
			continue
		}
		eligible++
		domain := validation.NormalizeDomain(e.Domain)
		if domain == "" {
			continue
		}
		k := models.ProspectKey{Domain: domain, CampaignID: *e.CampaignID}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys, eligible
}

func without(keys, drop []models.ProspectKey) []models.ProspectKey {
	if len(drop) == 0 {
		return keys
	}
	skip := make(map[models.ProspectKey]bool, len(drop))
	for _, k := range drop {
		skip[k] = true
	}
	out := keys[:0:0]
	for _, k := range keys {
		if !skip[k] {
			out = append(out, k)
		}
	}
	return out
}

func perCampaign(created []models.ProspectKey) []models.CampaignCount {
	counts := map[int64]int{}
	for _, k := range created {
		counts[k.CampaignID]++
	}
	out := make([]models.CampaignCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.CampaignCount{CampaignID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampaignID < out[j].CampaignID })
	return out
}

// Retire archives the targeted prospecting records, blacklists every target
// domain and deletes the records. Targets whose record no longer exists are
// still blacklisted.
func (s *Service) Retire(ctx context.Context, targets []models.RetireTarget) (models.RetireResult, error) {
	if len(targets) == 0 {
		return models.RetireResult{Message: "No domains to blacklist"}, nil
	}

	ids, domains := retireSets(targets)

	var result models.RetireResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		var records []models.ProspectingRecord
		if len(ids) > 0 {
			var err error
			records, err = tx.ProspectsByIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("load prospects: %w", err)
			}
		}

		archived := 0
		for _, rec := range records {
			snapshot := models.NewArchiveRecord(rec, s.archiveReason)
			if err := tx.InsertArchive(ctx, &snapshot); err != nil {
				return fmt.Errorf("archive prospect %d: %w", rec.ID, err)
			}
			archived++
		}

		blacklisted := 0
		for _, d := range domains {
			added, err := tx.BlacklistDomain(ctx, d)
			if err != nil {
				return fmt.Errorf("blacklist %s: %w", d, err)
			}
			if added {
				blacklisted++
			}
		}

		var removed int64
		if len(ids) > 0 {
			var err error
			removed, err = tx.DeleteProspects(ctx, ids)
			if err != nil {
				return fmt.Errorf("delete prospects: %w", err)
			}
		}

		result = models.RetireResult{
			Archived:    archived,
			Blacklisted: blacklisted,
			Removed:     int(removed),
		}
		return nil
	})
	if err != nil {
		return models.RetireResult{}, err
	}

	result.Message = fmt.Sprintf(
		"Successfully archived %d records, blacklisted %d domains, and removed %d records from prospecting",
		result.Archived, result.Blacklisted, result.Removed,
	)
	metrics.ObserveRetirement(result.Archived, result.Blacklisted, result.Removed)
	slog.Info("prospects retired", "archived", result.Archived, "blacklisted", result.Blacklisted, "removed", result.Removed)
	return result, nil
}

// retireSets splits targets into unique positive ids and unique normalized
// domains, preserving input order.
func retireSets(targets []models.RetireTarget) (ids []int64, domains []string) {
	seenID := map[int64]bool{}
	seenDomain := map[string]bool{}
	for _, t := range targets {
		if t.ID > 0 && !seenID[t.ID] {
			seenID[t.ID] = true
			ids = append(ids, t.ID)
		}
		if d := validation.NormalizeDomain(t.Domain); d != "" && !seenDomain[d] {
			seenDomain[d] = true
			domains = append(domains, d)
		}
	}
	return ids, domains
}
