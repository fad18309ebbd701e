// Package facts derives scalar display facts from the JSON documents stored
// alongside prospecting and email records.
//
// Extraction never fails: absent or malformed input yields absent facts.
package facts

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"outreach/internal/models"
)

// Paths into the analysis document.
const (
	PathVerdict       = "link_building_recommendation.verdict"
	PathPriority      = "link_building_recommendation.outreach_priority"
	PathGuestPosts    = "guest_post_analysis.accepts_guest_posts"
	PathContactEmails = "contact_availability.emails_found.actual_emails"
	PathLinkValue     = "overall_link_value"
)

var leadingInt = regexp.MustCompile(`^\s*(-?\d+)`)

// parse returns the document root, unwrapping a document that was stored as
// a JSON-encoded string. ok is false for empty or invalid JSON.
func parse(raw []byte) (gjson.Result, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	res := gjson.ParseBytes(raw)
	if res.Type == gjson.String {
		if !gjson.Valid(res.Str) {
			return gjson.Result{}, false
		}
		res = gjson.Parse(res.Str)
	}
	return res, true
}

// TopCountry reads the first [countryCode, traffic] tuple of a country
// traffic document. The code is upper-cased. Traffic given as a string is
// read from its leading digits.
func TopCountry(raw []byte) (country *string, traffic *int64) {
	doc, ok := parse(raw)
	if !ok || !doc.IsArray() {
		return nil, nil
	}
	head := doc.Get("0")
	if !head.IsArray() {
		return nil, nil
	}

	if code := head.Get("0"); code.Type == gjson.String {
		if s := strings.ToUpper(strings.TrimSpace(code.Str)); s != "" {
			country = &s
		}
	}

	switch t := head.Get("1"); t.Type {
	case gjson.Number:
		n := t.Int()
		traffic = &n
	case gjson.String:
		if m := leadingInt.FindStringSubmatch(t.Str); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				traffic = &n
			}
		}
	}
	return country, traffic
}

// Analysis holds the facts read from an AI analysis document.
type Analysis struct {
	LinkValue         *float64
	Verdict           *string
	Priority          *string
	AcceptsGuestPosts *string
	ContactEmails     []string
}

// ExtractAnalysis reads the fixed fact paths of an analysis document.
func ExtractAnalysis(raw []byte) Analysis {
	var a Analysis
	doc, ok := parse(raw)
	if !ok || !doc.IsObject() {
		return a
	}

	if v := doc.Get(PathLinkValue); v.Type == gjson.Number {
		n := v.Float()
		a.LinkValue = &n
	}
	a.Verdict = text(doc.Get(PathVerdict))
	a.Priority = text(doc.Get(PathPriority))

	switch g := doc.Get(PathGuestPosts); g.Type {
	case gjson.String:
		a.AcceptsGuestPosts = text(g)
	case gjson.True:
		s := "yes"
		a.AcceptsGuestPosts = &s
	case gjson.False:
		s := "no"
		a.AcceptsGuestPosts = &s
	}

	if emails := doc.Get(PathContactEmails); emails.IsArray() {
		for _, e := range emails.Array() {
			if e.Type == gjson.String && strings.TrimSpace(e.Str) != "" {
				a.ContactEmails = append(a.ContactEmails, strings.TrimSpace(e.Str))
			}
		}
	}
	return a
}

func text(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := strings.TrimSpace(r.Str)
	if s == "" {
		return nil
	}
	return &s
}

// Verdict reconciles the stored outreach status with the document verdict.
// A stored APPROVE or REJECT wins; otherwise the document value is used when
// it is APPROVE, REJECT or REVIEW in any case; anything else is UNKNOWN.
func Verdict(column, doc *string) string {
	if column != nil {
		switch v := strings.ToUpper(strings.TrimSpace(*column)); v {
		case models.VerdictApprove, models.VerdictReject:
			return v
		}
	}
	if doc != nil {
		switch v := strings.ToUpper(strings.TrimSpace(*doc)); v {
		case models.VerdictApprove, models.VerdictReject, models.VerdictReview:
			return v
		}
	}
	return models.VerdictUnknown
}

// GuestPosts reconciles the stored tri-state flag with the document answer.
func GuestPosts(column *int, doc *string) string {
	if column != nil {
		switch *column {
		case 1:
			return models.GuestPostsYes
		case 0:
			return models.GuestPostsNo
		}
	}
	if doc != nil {
		switch strings.ToLower(strings.TrimSpace(*doc)) {
		case "yes", "true":
			return models.GuestPostsYes
		case "no", "false":
			return models.GuestPostsNo
		}
	}
	return models.GuestPostsUnknown
}

// Priority takes the first non-blank of the stored and document priorities
// and returns its canonical spelling. Anything outside Low, Medium and High
// is Unknown.
func Priority(column, doc *string) string {
	for _, p := range []*string{column, doc} {
		if p == nil {
			continue
		}
		v := strings.TrimSpace(*p)
		if v == "" {
			continue
		}
		switch strings.ToLower(v) {
		case "low":
			return models.PriorityLow
		case "medium":
			return models.PriorityMedium
		case "high":
			return models.PriorityHigh
		}
		return models.PriorityUnknown
	}
	return models.PriorityUnknown
}

// LinkValue prefers the stored score over the document's overall value.
func LinkValue(column *int, doc *float64) *float64 {
	if column != nil {
		v := float64(*column)
		return &v
	}
	return doc
}
