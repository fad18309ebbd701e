// Package listing serves the paginated read views: a session's cart, the
// prospecting table and analyzed emails.
package listing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"outreach/internal/cache"
	"outreach/internal/db"
	"outreach/internal/facts"
	"outreach/internal/lifecycle"
	"outreach/internal/models"
	"outreach/internal/query"
	"outreach/internal/validation"
)

// Store is the read surface behind the list views.
type Store interface {
	ListCart(ctx context.Context, sessionID string, p query.Params) (db.Page[models.CartEntry], error)
	CountCart(ctx context.Context, sessionID string) (int64, error)
	CountCartForCampaign(ctx context.Context, sessionID string, campaignID int64) (int64, error)
	DeleteCartEntries(ctx context.Context, sessionID string, ids []int64) (int64, error)

	ListProspects(ctx context.Context, p query.Params) (db.Page[models.ProspectingRecord], error)
	ProspectingStats(ctx context.Context) (models.ProspectingStats, error)
	ProspectingCampaigns(ctx context.Context) ([]string, error)
	ProspectingTopCountries(ctx context.Context) ([]string, error)

	ListEmails(ctx context.Context, p query.Params) (db.Page[models.EmailRow], error)
	CountEmails(ctx context.Context) (int64, error)
	EmailCampaigns(ctx context.Context) ([]string, error)

	ProcessingPaused(ctx context.Context) (bool, error)
	ToggleProcessingPaused(ctx context.Context) (bool, error)
}

// Service implements the list and read operations.
type Service struct {
	store Store
	cache *cache.Cache
}

// NewService creates a listing service. A nil cache disables option caching.
func NewService(store Store, c *cache.Cache) *Service {
	return &Service{store: store, cache: c}
}

// Carts lists one page of the session's cart. totalAvailable is the size of
// the whole cart.
func (s *Service) Carts(ctx context.Context, sessionID string, p query.Params) (models.ListResponse[models.CartEntry], error) {
	if sessionID == "" {
		return models.ListResponse[models.CartEntry]{}, lifecycle.ErrMissingSession
	}

	var page db.Page[models.CartEntry]
	var available int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.store.ListCart(gctx, sessionID, p)
		return err
	})
	g.Go(func() error {
		var err error
		available, err = s.store.CountCart(gctx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ListResponse[models.CartEntry]{}, fmt.Errorf("list cart: %w", err)
	}

	return models.ListResponse[models.CartEntry]{
		Items:      page.Items,
		Pagination: page.Query.Pagination(page.Matched, available),
	}, nil
}

// CartCount counts the session's cart entries for one campaign.
func (s *Service) CartCount(ctx context.Context, sessionID string, campaignID int64) (models.CountResponse, error) {
	if sessionID == "" {
		return models.CountResponse{}, lifecycle.ErrMissingSession
	}
	if campaignID <= 0 {
		return models.CountResponse{}, validation.NewError("campaign_id must be a positive integer")
	}
	n, err := s.store.CountCartForCampaign(ctx, sessionID, campaignID)
	if err != nil {
		return models.CountResponse{}, fmt.Errorf("count cart: %w", err)
	}
	return models.CountResponse{Count: n}, nil
}

// DeleteCartEntries removes entries from the session's cart. Entries owned
// by other sessions are never touched.
func (s *Service) DeleteCartEntries(ctx context.Context, sessionID string, ids []int64) (models.DeleteResponse, error) {
	if sessionID == "" {
		return models.DeleteResponse{}, lifecycle.ErrMissingSession
	}
	if ok, msg := validation.ValidateIDs(ids); !ok {
		return models.DeleteResponse{}, validation.NewError(msg)
	}
	n, err := s.store.DeleteCartEntries(ctx, sessionID, ids)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	return models.DeleteResponse{Deleted: n}, nil
}

// Prospects lists one page of prospecting records. Paging stops at
// db.MaxProspectingRows; totalAvailable is the uncapped filtered count.
func (s *Service) Prospects(ctx context.Context, p query.Params) (models.ListResponse[models.ProspectingItem], error) {
	page, err := s.store.ListProspects(ctx, p)
	if err != nil {
		return models.ListResponse[models.ProspectingItem]{}, fmt.Errorf("list prospects: %w", err)
	}

	items := make([]models.ProspectingItem, len(page.Items))
	for i, rec := range page.Items {
		items[i] = ProspectingItem(rec)
	}
	return models.ListResponse[models.ProspectingItem]{
		Items:      items,
		Pagination: page.Query.Pagination(page.Matched, page.Matched),
	}, nil
}

// ProspectingItem maps a stored record to its listed form.
func ProspectingItem(rec models.ProspectingRecord) models.ProspectingItem {
	country, traffic := facts.TopCountry(rec.TopByCountry)
	item := models.ProspectingItem{
		ID:               rec.ID,
		Domain:           rec.Domain,
		Metrics:          rec.Metrics,
		TopCountry:       country,
		TopTraffic:       traffic,
		ProcessingStatus: rec.ProcessingStatus,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
		ErrorMessage:     rec.ErrorMessage,
	}
	if rec.CampaignName != nil {
		item.CampaignName = *rec.CampaignName
	}
	return item
}

// Emails lists one page of analyzed emails. totalAvailable counts every
// email record.
func (s *Service) Emails(ctx context.Context, p query.Params) (models.ListResponse[models.EmailItem], error) {
	var page db.Page[models.EmailRow]
	var available int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.store.ListEmails(gctx, p)
		return err
	})
	g.Go(func() error {
		var err error
		available, err = s.store.CountEmails(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ListResponse[models.EmailItem]{}, fmt.Errorf("list emails: %w", err)
	}

	items := make([]models.EmailItem, len(page.Items))
	for i, row := range page.Items {
		items[i] = EmailItem(row)
	}
	return models.ListResponse[models.EmailItem]{
		Items:      items,
		Pagination: page.Query.Pagination(page.Matched, available),
	}, nil
}

// EmailItem reconciles a stored email with the facts of its analysis
// document. Column values win over document values.
func EmailItem(row models.EmailRow) models.EmailItem {
	a := facts.ExtractAnalysis(row.Analysis)
	item := models.EmailItem{
		ID:            row.ID,
		Domain:        row.Domain,
		LinkValue:     facts.LinkValue(row.LinkValueScore, a.LinkValue),
		Verdict:       facts.Verdict(row.OutreachStatus, a.Verdict),
		Priority:      facts.Priority(row.OutreachPriority, a.Priority),
		GuestPosts:    facts.GuestPosts(row.AcceptsGuestPosts, a.AcceptsGuestPosts),
		PrimaryEmail:  row.PrimaryEmail,
		ContactEmails: a.ContactEmails,
		DomainRating:  row.DomainRating,
		OrgTraffic:    row.OrgTraffic,
		OrgKeywords:   row.OrgKeywords,
		AnalyzedAt:    row.AnalyzedAt,
	}
	if item.ContactEmails == nil {
		item.ContactEmails = []string{}
	}
	if row.CampaignName != nil {
		item.CampaignName = *row.CampaignName
	}
	return item
}

// Stats counts prospecting records by processing status.
func (s *Service) Stats(ctx context.Context) (models.ProspectingStats, error) {
	return s.store.ProspectingStats(ctx)
}

// ProcessingState reports whether enrichment is paused.
func (s *Service) ProcessingState(ctx context.Context) (models.ProcessingState, error) {
	paused, err := s.store.ProcessingPaused(ctx)
	if err != nil {
		return models.ProcessingState{}, fmt.Errorf("read processing state: %w", err)
	}
	return models.ProcessingState{Paused: paused}, nil
}

// ToggleProcessing flips the enrichment pause switch and returns the new state.
func (s *Service) ToggleProcessing(ctx context.Context) (models.ProcessingState, error) {
	paused, err := s.store.ToggleProcessingPaused(ctx)
	if err != nil {
		return models.ProcessingState{}, fmt.Errorf("toggle processing: %w", err)
	}
	state := models.ProcessingState{Paused: paused, Message: "Processing resumed successfully"}
	if paused {
		state.Message = "Processing paused successfully"
	}
	return state, nil
}
