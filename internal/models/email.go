package models

import (
	"encoding/json"
	"time"
)

// Outreach verdicts.
const (
	VerdictApprove = "APPROVE"
	VerdictReject  = "REJECT"
	VerdictReview  = "REVIEW"
	VerdictUnknown = "UNKNOWN"
)

// Guest post acceptance labels.
const (
	GuestPostsYes     = "Yes"
	GuestPostsNo      = "No"
	GuestPostsUnknown = "Unknown"
)

// Outreach priorities.
const (
	PriorityLow     = "Low"
	PriorityMedium  = "Medium"
	PriorityHigh    = "High"
	PriorityUnknown = "Unknown"
)

// EmailRecord is an analyzed outreach target as stored.
type EmailRecord struct {
	ID                    int64           `json:"id"`
	Domain                string          `json:"domain"`
	CampaignName          *string         `json:"campaign_name"`
	OriginalProspectingID *int64          `json:"original_prospecting_id"`
	Status                string          `json:"status"`
	Analysis              json.RawMessage `json:"analysis_json"`
	AnalyzedAt            *time.Time      `json:"analyzed_at"`
	AnalysisError         *string         `json:"analysis_error"`
	AcceptsGuestPosts     *int            `json:"accepts_guest_posts"`
	PrimaryEmail          *string         `json:"primary_email"`
	LinkValueScore        *int            `json:"link_value_score"`
	OutreachPriority      *string         `json:"outreach_priority"`
	OutreachStatus        *string         `json:"outreach_status"`
	ContactedAt           *time.Time      `json:"contacted_at"`
	ResponseReceivedAt    *time.Time      `json:"response_received_at"`
	Notes                 *string         `json:"notes"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// EmailRow is an email record joined with the archived metrics of the
// prospecting record it came from.
type EmailRow struct {
	EmailRecord
	DomainRating *int
	OrgTraffic   *int64
	OrgKeywords  *int64
}

// EmailItem is an email record as listed, with reconciled facts.
type EmailItem struct {
	ID            int64      `json:"id"`
	Domain        string     `json:"domain"`
	CampaignName  string     `json:"campaign_name"`
	LinkValue     *float64   `json:"link_value"`
	Verdict       string     `json:"verdict"`
	Priority      string     `json:"priority"`
	GuestPosts    string     `json:"guest_posts"`
	PrimaryEmail  *string    `json:"primary_email"`
	ContactEmails []string   `json:"contact_emails"`
	DomainRating  *int       `json:"domain_rating"`
	OrgTraffic    *int64     `json:"org_traffic"`
	OrgKeywords   *int64     `json:"org_keywords"`
	AnalyzedAt    *time.Time `json:"analyzed_at"`
}

// EmailDetail is a single email record with its analysis document and
// latest generated draft.
type EmailDetail struct {
	EmailItem
	Status           string           `json:"status"`
	Analysis         json.RawMessage  `json:"analysis_json"`
	AnalysisError    *string          `json:"analysis_error"`
	Notes            *string          `json:"notes"`
	LatestGeneration *EmailGeneration `json:"latest_generation"`
}

// EmailGeneration is an AI-drafted outreach email.
type EmailGeneration struct {
	ID             int64     `json:"id"`
	EmailID        int64     `json:"email_id"`
	Domain         string    `json:"domain"`
	PromptUsed     string    `json:"prompt_used"`
	GeneratedEmail string    `json:"generated_email"`
	GeneratedAt    time.Time `json:"generated_at"`
}
