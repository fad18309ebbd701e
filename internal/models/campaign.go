package models

import "time"

// Campaign statuses.
const (
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// Campaign groups prospecting work around a keyword set.
type Campaign struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	OriginalKeywords         string    `json:"original_keywords"`
	ExpandedKeywords         string    `json:"expanded_keywords"`
	IsActive                 bool      `json:"is_active"`
	Status                   string    `json:"status"`
	BlacklistCampaignEnabled bool      `json:"blacklist_campaign_enabled"`
	BlacklistGlobalEnabled   bool      `json:"blacklist_global_enabled"`
	CronAddCount             int       `json:"cron_add_count"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// CampaignDetail is a campaign with its related record counts.
type CampaignDetail struct {
	Campaign
	CartCount               int64 `json:"cart_count"`
	PendingProspectingCount int64 `json:"pending_prospecting_count"`
	CampaignBlacklistCount  int64 `json:"campaign_blacklist_count"`
}

// CampaignInput is the payload for creating a campaign.
type CampaignInput struct {
	Name                     string `json:"name"`
	OriginalKeywords         string `json:"original_keywords"`
	IsActive                 bool   `json:"is_active"`
	BlacklistCampaignEnabled *bool  `json:"blacklist_campaign_enabled"`
	BlacklistGlobalEnabled   *bool  `json:"blacklist_global_enabled"`
	CronAddCount             *int   `json:"cron_add_count"`
}

// CampaignPatch is a partial campaign update. Nil fields are left unchanged.
type CampaignPatch struct {
	ExpandedKeywords         *string `json:"expanded_keywords"`
	IsActive                 *bool   `json:"is_active"`
	Status                   *string `json:"status"`
	BlacklistCampaignEnabled *bool   `json:"blacklist_campaign_enabled"`
	BlacklistGlobalEnabled   *bool   `json:"blacklist_global_enabled"`
	CronAddCount             *int    `json:"cron_add_count"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CampaignPatch) IsEmpty() bool {
	return p.ExpandedKeywords == nil && p.IsActive == nil && p.Status == nil &&
		p.BlacklistCampaignEnabled == nil && p.BlacklistGlobalEnabled == nil && p.CronAddCount == nil
}

// ValidCampaignStatus reports whether s is a known campaign status.
func ValidCampaignStatus(s string) bool {
	return s == CampaignActive || s == CampaignPaused || s == CampaignCompleted
}
