package db

import (
	"strings"

	"outreach/internal/models"
	"outreach/internal/query"
	"outreach/internal/validation"
)

var pageSizes = []int{25, 50, 100, 200}

// MaxProspectingRows caps the rows the prospecting view pages through.
const MaxProspectingRows = 500

// SQL expressions for facts embedded in JSON documents. Each mirrors the
// reconciliation done in the facts package.
const (
	topCountryExpr = `CASE WHEN jsonb_typeof(p.org_traffic_top_by_country->0->0) = 'string'
		THEN NULLIF(UPPER(BTRIM(p.org_traffic_top_by_country->0->>0)), '') END`

	topTrafficExpr = `CASE jsonb_typeof(p.org_traffic_top_by_country->0->1)
		WHEN 'number' THEN TRUNC((p.org_traffic_top_by_country->0->>1)::numeric)
		WHEN 'string' THEN SUBSTRING(p.org_traffic_top_by_country->0->>1 FROM '^\s*(-?[0-9]+)')::numeric
		END`

	linkValueExpr = `COALESCE(e.link_value_score::numeric,
		CASE WHEN jsonb_typeof(e.analysis_json->'overall_link_value') = 'number'
			THEN (e.analysis_json->>'overall_link_value')::numeric END)`

	docVerdict = `UPPER(BTRIM(e.analysis_json->'link_building_recommendation'->>'verdict'))`

	verdictExpr = `CASE
		WHEN UPPER(BTRIM(e.outreach_status)) IN ('APPROVE', 'REJECT') THEN UPPER(BTRIM(e.outreach_status))
		WHEN ` + docVerdict + ` IN ('APPROVE', 'REJECT', 'REVIEW') THEN ` + docVerdict + `
		ELSE 'UNKNOWN' END`

	priorityExpr = `CASE LOWER(COALESCE(NULLIF(BTRIM(e.outreach_priority), ''),
			NULLIF(BTRIM(e.analysis_json->'link_building_recommendation'->>'outreach_priority'), '')))
		WHEN 'low' THEN 'Low'
		WHEN 'medium' THEN 'Medium'
		WHEN 'high' THEN 'High'
		ELSE 'Unknown' END`

	docGuestPosts = `LOWER(BTRIM(e.analysis_json->'guest_post_analysis'->>'accepts_guest_posts'))`

	guestPostsExpr = `CASE
		WHEN e.accepts_guest_posts = 1 THEN 'Yes'
		WHEN e.accepts_guest_posts = 0 THEN 'No'
		WHEN ` + docGuestPosts + ` IN ('yes', 'true') THEN 'Yes'
		WHEN ` + docGuestPosts + ` IN ('no', 'false') THEN 'No'
		ELSE 'Unknown' END`
)

// countryCode accepts country codes safe to match inside a JSON expression.
func countryCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, validation.ValidToken(s)
}

// CartCollection lists a session's cart.
var CartCollection = &query.Collection{
	Columns: cartColumns,
	From:    "outreach_cart c",
	Filters: []query.Filter{
		{Params: []string{"domain", "search"}, Kind: query.Contains, Expr: "c.domain"},
	},
	Orders: map[string]string{
		"id":               "c.id",
		"domain":           "c.domain",
		"similarity_score": "c.similarity_score",
		"added_at":         "c.added_at",
	},
	DefaultOrder:    []query.Term{{Expr: "c.similarity_score", Desc: true}},
	Tiebreak:        "c.id",
	PageSizes:       pageSizes,
	DefaultPageSize: 25,
}

// ProspectCollection lists prospecting records, capped at MaxProspectingRows.
var ProspectCollection = &query.Collection{
	Columns: prospectColumns,
	From:    "outreach_prospecting p",
	Filters: []query.Filter{
		{Params: []string{"search"}, Kind: query.Contains, Expr: "p.domain"},
		{Params: []string{"campaign"}, Kind: query.OneOf, Expr: "p.campaign_name"},
		{Params: []string{"status", "processing_status"}, Kind: query.OneOf, Expr: "p.processing_status",
			Canon: query.AllowList(models.ProcessingStatuses...)},
		{Params: []string{"org_cost"}, Kind: query.Between, Expr: "p.org_cost"},
		{Params: []string{"org_keywords"}, Kind: query.Between, Expr: "p.org_keywords"},
		{Params: []string{"org_traffic"}, Kind: query.Between, Expr: "p.org_traffic"},
		{Params: []string{"dr", "domain_rating"}, Kind: query.Between, Expr: "p.domain_rating"},
		{Params: []string{"paid_traffic"}, Kind: query.Between, Expr: "p.paid_traffic"},
		{Params: []string{"paid_keywords"}, Kind: query.Between, Expr: "p.paid_keywords"},
		{Params: []string{"paid_cost"}, Kind: query.Between, Expr: "p.paid_cost"},
		{Params: []string{"top_traffic"}, Kind: query.Between, Expr: topTrafficExpr},
		{Params: []string{"error"}, Kind: query.Present, Expr: "p.error_message"},
		{Params: []string{"top_country"}, Kind: query.Member, Expr: "p.org_traffic_top_by_country", Canon: countryCode},
	},
	Orders: map[string]string{
		"id":                "p.id",
		"domain":            "p.domain",
		"campaign_name":     "p.campaign_name",
		"domain_rating":     "p.domain_rating",
		"org_traffic":       "p.org_traffic",
		"org_keywords":      "p.org_keywords",
		"org_cost":          "p.org_cost",
		"paid_traffic":      "p.paid_traffic",
		"paid_keywords":     "p.paid_keywords",
		"paid_cost":         "p.paid_cost",
		"top_country":       topCountryExpr,
		"top_traffic":       topTrafficExpr,
		"processing_status": "p.processing_status",
		"created_at":        "p.created_at",
		"updated_at":        "p.updated_at",
	},
	DefaultOrder: []query.Term{
		{Expr: "p.domain_rating", Desc: true},
		{Expr: "p.created_at", Desc: true},
	},
	DefaultDir:      "DESC",
	Tiebreak:        "p.id",
	PageSizes:       pageSizes,
	DefaultPageSize: 25,
	Cap:             MaxProspectingRows,
}

// EmailCollection lists analyzed email records joined with the metrics of
// their most recent archive snapshot.
var EmailCollection = &query.Collection{
	Columns: emailColumns,
	From:    emailFrom,
	Filters: []query.Filter{
		{Params: []string{"search"}, Kind: query.Contains, Expr: "e.domain"},
		{Params: []string{"campaign"}, Kind: query.OneOf, Expr: "e.campaign_name"},
		{Params: []string{"link_value"}, Kind: query.Between, Expr: linkValueExpr},
		{Params: []string{"verdict"}, Kind: query.OneOf, Expr: verdictExpr,
			Canon: query.AllowList(models.VerdictApprove, models.VerdictReject, models.VerdictReview, models.VerdictUnknown)},
		{Params: []string{"priority"}, Kind: query.OneOf, Expr: priorityExpr,
			Canon: query.AllowList(models.PriorityLow, models.PriorityMedium, models.PriorityHigh)},
		{Params: []string{"guest_posts"}, Kind: query.OneOf, Expr: guestPostsExpr,
			Canon: query.AllowList(models.GuestPostsYes, models.GuestPostsNo, models.GuestPostsUnknown)},
		{Params: []string{"traffic"}, Kind: query.IntBetween, Expr: "a.org_traffic"},
		{Params: []string{"keywords"}, Kind: query.IntBetween, Expr: "a.org_keywords"},
		{Params: []string{"domain_rating"}, Kind: query.IntBetween, Expr: "a.domain_rating"},
	},
	Orders: map[string]string{
		"domain":        "e.domain",
		"campaign_name": "e.campaign_name",
		"link_value":    linkValueExpr,
		"verdict":       verdictExpr,
		"priority":      priorityExpr,
		"guest_posts":   guestPostsExpr,
		"domain_rating": "a.domain_rating",
		"org_traffic":   "a.org_traffic",
		"org_keywords":  "a.org_keywords",
		"analyzed_at":   "e.analyzed_at",
	},
	DefaultOrder:    []query.Term{{Expr: "e.analyzed_at", Desc: true}},
	DefaultDir:      "DESC",
	Tiebreak:        "e.id",
	PageSizes:       pageSizes,
	DefaultPageSize: 25,
}
