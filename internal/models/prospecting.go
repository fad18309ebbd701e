package models

import (
	"encoding/json"
	"time"
)

// Processing statuses set by the enrichment worker.
const (
	ProcessingPending    = "pending"
	ProcessingProcessing = "processing"
	ProcessingCompleted  = "completed"
	ProcessingFailed     = "failed"
)

// ProcessingStatuses lists every valid processing status.
var ProcessingStatuses = []string{
	ProcessingPending,
	ProcessingProcessing,
	ProcessingCompleted,
	ProcessingFailed,
}

// Metrics holds the SEO metrics an enrichment pass attaches to a domain.
type Metrics struct {
	DomainRating *int     `json:"domain_rating"`
	OrgTraffic   *int64   `json:"org_traffic"`
	OrgKeywords  *int64   `json:"org_keywords"`
	OrgCost      *float64 `json:"org_cost"`
	PaidTraffic  *int64   `json:"paid_traffic"`
	PaidKeywords *int64   `json:"paid_keywords"`
	PaidCost     *float64 `json:"paid_cost"`
}

// ProspectingRecord is a domain under qualification for a campaign.
type ProspectingRecord struct {
	ID           int64   `json:"id"`
	Domain       string  `json:"domain"`
	CampaignName *string `json:"campaign_name"`
	CampaignID   *int64  `json:"campaign_id"`
	Metrics
	// TopByCountry is the raw [[country, traffic], ...] document.
	TopByCountry     json.RawMessage `json:"-"`
	ProcessingStatus string          `json:"processing_status"`
	ErrorMessage     *string         `json:"error_message"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProspectingItem is a prospecting record as listed, with top-country facts.
type ProspectingItem struct {
	ID           int64  `json:"id"`
	Domain       string `json:"domain"`
	CampaignName string `json:"campaign_name"`
	Metrics
	TopCountry       *string   `json:"top_country"`
	TopTraffic       *int64    `json:"top_traffic"`
	ProcessingStatus string    `json:"processing_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	ErrorMessage     *string   `json:"error_message"`
}

// ProspectingStats counts prospecting records by processing status.
type ProspectingStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// ArchiveRecord is an immutable snapshot of a retired prospecting record.
type ArchiveRecord struct {
	ID                    int64   `json:"id"`
	OriginalProspectingID int64   `json:"original_prospecting_id"`
	Domain                string  `json:"domain"`
	CampaignName          *string `json:"campaign_name"`
	CampaignID            *int64  `json:"campaign_id"`
	Metrics
	TopByCountry      json.RawMessage `json:"org_traffic_top_by_country"`
	ProcessingStatus  string          `json:"processing_status"`
	ErrorMessage      *string         `json:"error_message"`
	OriginalCreatedAt time.Time       `json:"original_created_at"`
	OriginalUpdatedAt time.Time       `json:"original_updated_at"`
	ArchivedAt        time.Time       `json:"archived_at"`
	ArchiveReason     string          `json:"archive_reason"`
}

// NewArchiveRecord snapshots p for archival.
func NewArchiveRecord(p ProspectingRecord, reason string) ArchiveRecord {
	return ArchiveRecord{
		OriginalProspectingID: p.ID,
		Domain:                p.Domain,
		CampaignName:          p.CampaignName,
		CampaignID:            p.CampaignID,
		Metrics:               p.Metrics,
		TopByCountry:          p.TopByCountry,
		ProcessingStatus:      p.ProcessingStatus,
		ErrorMessage:          p.ErrorMessage,
		OriginalCreatedAt:     p.CreatedAt,
		OriginalUpdatedAt:     p.UpdatedAt,
		ArchiveReason:         reason,
	}
}

// RetireTarget names a prospecting record to retire and the domain to blacklist.
type RetireTarget struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
}

// RetireResult reports the outcome of a retirement.
type RetireResult struct {
	Message     string `json:"message"`
	Archived    int    `json:"archived"`
	Blacklisted int    `json:"blacklisted"`
	Removed     int    `json:"removed"`
}

// ProcessingState is the global enrichment pause switch.
type ProcessingState struct {
	Paused  bool   `json:"paused"`
	Message string `json:"message,omitempty"`
}

// ProspectKey identifies a prospecting record: one domain per campaign.
type ProspectKey struct {
	Domain     string
	CampaignID int64
}
