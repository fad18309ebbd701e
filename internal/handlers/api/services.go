package api

import (
	"context"
	"encoding/json"

	"outreach/internal/models"
	"outreach/internal/query"
)

// CartService reads and trims the caller's cart.
type CartService interface {
	Carts(ctx context.Context, sessionID string, p query.Params) (models.ListResponse[models.CartEntry], error)
	CartCount(ctx context.Context, sessionID string, campaignID int64) (models.CountResponse, error)
	DeleteCartEntries(ctx context.Context, sessionID string, ids []int64) (models.DeleteResponse, error)
}

// ProspectingService reads the prospecting view and the processing switch.
type ProspectingService interface {
	Prospects(ctx context.Context, p query.Params) (models.ListResponse[models.ProspectingItem], error)
	Stats(ctx context.Context) (models.ProspectingStats, error)
	ProspectingFilterOptions(ctx context.Context) (models.ProspectingFilterOptions, error)
	ProcessingState(ctx context.Context) (models.ProcessingState, error)
	ToggleProcessing(ctx context.Context) (models.ProcessingState, error)
}

// LifecycleService moves domains between cart, prospecting and blacklist.
type LifecycleService interface {
	Promote(ctx context.Context, sessionID string) (models.PromoteResult, error)
	Retire(ctx context.Context, targets []models.RetireTarget) (models.RetireResult, error)
}

// EmailListService reads the emails view.
type EmailListService interface {
	Emails(ctx context.Context, p query.Params) (models.ListResponse[models.EmailItem], error)
	EmailFilterOptions(ctx context.Context) (models.EmailFilterOptions, error)
}

// EmailDraftService reads emails and drafts outreach messages.
type EmailDraftService interface {
	Get(ctx context.Context, id int64) (*models.EmailDetail, error)
	Generate(ctx context.Context, id int64, prompt string, analysis json.RawMessage) (*models.EmailGeneration, error)
	SaveGeneration(ctx context.Context, id int64, generatedEmail, promptUsed *string) (*models.EmailGeneration, error)
}

// CampaignService manages campaigns.
type CampaignService interface {
	List(ctx context.Context) ([]models.Campaign, error)
	Get(ctx context.Context, id int64, sessionID string) (*models.CampaignDetail, error)
	Create(ctx context.Context, in models.CampaignInput) (*models.Campaign, error)
	Update(ctx context.Context, id int64, p models.CampaignPatch) (*models.Campaign, error)
	Delete(ctx context.Context, id int64) error
}
