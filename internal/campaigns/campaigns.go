// Package campaigns manages outreach campaigns and their keyword sets.
package campaigns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"outreach/internal/models"
	"outreach/internal/validation"
)

// ErrEmptyExpansion is returned when keyword expansion yields no keywords.
var ErrEmptyExpansion = errors.New("keyword expansion produced no keywords")

// DefaultCronAddCount is the daily add count of a new campaign.
const DefaultCronAddCount = 10

// Store is the campaign persistence the service needs.
type Store interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id int64) (*models.Campaign, error)
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	SeedCampaign(ctx context.Context, c *models.Campaign) (bool, error)
	UpdateCampaign(ctx context.Context, id int64, p models.CampaignPatch) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id int64) error

	CountCartForCampaign(ctx context.Context, sessionID string, campaignID int64) (int64, error)
	CountProspectsForCampaign(ctx context.Context, campaignID int64, status string) (int64, error)
	CountArchivedForCampaign(ctx context.Context, campaignID int64) (int64, error)
}

// Expander widens a seed keyword list.
type Expander interface {
	ExpandKeywords(ctx context.Context, keywords string) (string, error)
}

// Service implements campaign operations.
type Service struct {
	store    Store
	expander Expander
}

// NewService creates a campaign service.
func NewService(store Store, expander Expander) *Service {
	return &Service{store: store, expander: expander}
}

// List returns every campaign.
func (s *Service) List(ctx context.Context) ([]models.Campaign, error) {
	return s.store.ListCampaigns(ctx)
}

// Get returns a campaign with its related counts. The cart count covers
// only the given session's cart.
func (s *Service) Get(ctx context.Context, id int64, sessionID string) (*models.CampaignDetail, error) {
	c, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.CampaignDetail{Campaign: *c}
	g, gctx := errgroup.WithContext(ctx)
	if sessionID != "" {
		g.Go(func() error {
			n, err := s.store.CountCartForCampaign(gctx, sessionID, id)
			detail.CartCount = n
			return err
		})
	}
	g.Go(func() error {
		n, err := s.store.CountProspectsForCampaign(gctx, id, models.ProcessingPending)
		detail.PendingProspectingCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountArchivedForCampaign(gctx, id)
		detail.CampaignBlacklistCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("campaign counts: %w", err)
	}
	return detail, nil
}

// Create validates the input, expands its keywords and stores the campaign.
// Nothing is written when expansion fails or yields nothing.
func (s *Service) Create(ctx context.Context, in models.CampaignInput) (*models.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	keywords := strings.TrimSpace(in.OriginalKeywords)
	if ok, msg := validation.ValidateCampaignName(name); !ok {
		return nil, validation.NewError(msg)
	}
	if ok, msg := validation.ValidateKeywords(keywords); !ok {
		return nil, validation.NewError(msg)
	}

	c := &models.Campaign{
		Name:                   name,
		OriginalKeywords:       keywords,
		IsActive:               in.IsActive,
		Status:                 models.CampaignActive,
		BlacklistGlobalEnabled: true,
		CronAddCount:           DefaultCronAddCount,
	}
	if in.BlacklistCampaignEnabled != nil {
		c.BlacklistCampaignEnabled = *in.BlacklistCampaignEnabled
	}
	if in.BlacklistGlobalEnabled != nil {
		c.BlacklistGlobalEnabled = *in.BlacklistGlobalEnabled
	}
	if in.CronAddCount != nil {
		if ok, msg := validation.ValidateCronAddCount(*in.CronAddCount); !ok {
			return nil, validation.NewError(msg)
		}
		c.CronAddCount = *in.CronAddCount
	}

	expanded, err := s.expander.ExpandKeywords(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("expand keywords: %w", err)
	}
	if strings.TrimSpace(expanded) == "" {
		return nil, ErrEmptyExpansion
	}
	c.ExpandedKeywords = expanded

	if err := s.store.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("campaign created", "id", c.ID, "name", c.Name, "active", c.IsActive)
	return c, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, p models.CampaignPatch) (*models.Campaign, error) {
	if p.IsEmpty() {
		return nil, validation.NewError("no fields to update")
	}
	if p.ExpandedKeywords != nil {
		trimmed := strings.TrimSpace(*p.ExpandedKeywords)
		p.ExpandedKeywords = &trimmed
	}
	if p.Status != nil && !models.ValidCampaignStatus(*p.Status) {
		return nil, validation.NewError("status must be one of: active, paused, completed")
	}
	if p.CronAddCount != nil {
		if ok, msg := validation.ValidateCronAddCount(*p.CronAddCount); !ok {
			return nil, validation.NewError(msg)
		}
	}
	return s.store.UpdateCampaign(ctx, id, p)
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteCampaign(ctx, id)
}

// Seed inserts campaigns that do not exist yet, by name. Seeded campaigns
// are inactive and use their original keywords unexpanded.
func (s *Service) Seed(ctx context.Context, seeds []models.CampaignInput) (int, error) {
	created := 0
	for _, in := range seeds {
		name := strings.TrimSpace(in.Name)
		keywords := strings.TrimSpace(in.OriginalKeywords)
		if ok, msg := validation.ValidateCampaignName(name); !ok {
			return created, fmt.Errorf("seed %q: %w", in.Name, validation.NewError(msg))
		}
		if ok, msg := validation.ValidateKeywords(keywords); !ok {
			return created, fmt.Errorf("seed %q: %w", in.Name, validation.NewError(msg))
		}
		c := &models.Campaign{
			Name:             name,
			OriginalKeywords: keywords,
			ExpandedKeywords: keywords,
			Status:           models.CampaignActive,
			CronAddCount:     DefaultCronAddCount,
		}
		if in.CronAddCount != nil {
			if ok, msg := validation.ValidateCronAddCount(*in.CronAddCount); !ok {
				return created, fmt.Errorf("seed %q: %w", in.Name, validation.NewError(msg))
			}
			c.CronAddCount = *in.CronAddCount
		}
		ok, err := s.store.SeedCampaign(ctx, c)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}
