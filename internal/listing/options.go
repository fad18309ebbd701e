package listing

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"outreach/internal/cache"
	"outreach/internal/models"
)

// Cache keys for filter option lists.
const (
	ProspectingOptionsKey = "filter-options:prospecting"
	EmailOptionsKey       = "filter-options:emails"
)

// ProspectingFilterOptions lists the campaigns, top countries and statuses
// the prospecting filters accept. Results are served from the cache when
// one is configured.
func (s *Service) ProspectingFilterOptions(ctx context.Context) (models.ProspectingFilterOptions, error) {
	return cache.Fetch(ctx, s.cache, ProspectingOptionsKey, s.loadProspectingOptions)
}

func (s *Service) loadProspectingOptions(ctx context.Context) (models.ProspectingFilterOptions, error) {
	opts := models.ProspectingFilterOptions{Statuses: models.ProcessingStatuses}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Campaigns, err = s.store.ProspectingCampaigns(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.TopCountries, err = s.store.ProspectingTopCountries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ProspectingFilterOptions{}, err
	}
	return opts, nil
}

// EmailFilterOptions lists the campaigns and fixed vocabularies the email
// filters accept.
func (s *Service) EmailFilterOptions(ctx context.Context) (models.EmailFilterOptions, error) {
	return cache.Fetch(ctx, s.cache, EmailOptionsKey, s.loadEmailOptions)
}

func (s *Service) loadEmailOptions(ctx context.Context) (models.EmailFilterOptions, error) {
	campaigns, err := s.store.EmailCampaigns(ctx)
	if err != nil {
		return models.EmailFilterOptions{}, err
	}
	return models.EmailFilterOptions{
		Campaigns:  campaigns,
		Verdicts:   []string{models.VerdictApprove, models.VerdictReject, models.VerdictReview, models.VerdictUnknown},
		Priorities: []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh},
		GuestPosts: []string{models.GuestPostsYes, models.GuestPostsNo, models.GuestPostsUnknown},
	}, nil
}

// RefreshFilterOptions reloads every cached option list.
func (s *Service) RefreshFilterOptions(ctx context.Context) error {
	return errors.Join(
		cache.Refresh(ctx, s.cache, ProspectingOptionsKey, s.loadProspectingOptions),
		cache.Refresh(ctx, s.cache, EmailOptionsKey, s.loadEmailOptions),
	)
}
