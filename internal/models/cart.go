package models

import "time"

// CartEntry is a domain staged by a session before promotion.
type CartEntry struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	Domain          string    `json:"domain"`
	Keywords        *string   `json:"keywords"`
	SimilarityScore *float64  `json:"similarity_score"`
	SpiderID        *int64    `json:"spider_id"`
	CampaignID      *int64    `json:"campaign_id"`
	AddedAt         time.Time `json:"added_at"`
}

// PromoteResult reports the outcome of moving a session's cart into prospecting.
type PromoteResult struct {
	Skipped             int             `json:"skipped"`
	Inserted            int             `json:"inserted"`
	InsertedPerCampaign []CampaignCount `json:"insertedPerCampaign"`
}

// CampaignCount pairs a campaign with a row count.
type CampaignCount struct {
	CampaignID int64 `json:"campaignId"`
	Count      int   `json:"count"`
}
