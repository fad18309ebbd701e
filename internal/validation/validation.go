package validation

import (
	"errors"
	"regexp"
	"strings"
)

// Error is a rejected required input. Its message is safe to show callers.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a validation error.
func NewError(msg string) error {
	return &Error{Message: msg}
}

// Message returns the message of a validation error in err's chain.
func Message(err error) (string, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

// TokenPattern defines the characters allowed in values that end up inside a
// query expression: alphanumeric, hyphens, underscores.
var TokenPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var (
	schemePrefix = regexp.MustCompile(`(?i)^https?://`)
	wwwPrefix    = regexp.MustCompile(`(?i)^www\.`)
)

// MaxCronAddCount is the upper bound for a campaign's daily add count.
const MaxCronAddCount = 9999

// ValidToken checks if a value matches the allowed token pattern.
func ValidToken(value string) bool {
	if value == "" || len(value) > 64 {
		return false
	}
	return TokenPattern.MatchString(value)
}

// NormalizeDomain reduces a URL or hostname to its bare lowercase domain.
// The scheme and a leading "www." are removed and everything from the first
// slash onward is dropped. An empty result means the input carried no domain.
func NormalizeDomain(raw string) string {
	d := strings.TrimSpace(raw)
	d = schemePrefix.ReplaceAllString(d, "")
	d = wwwPrefix.ReplaceAllString(d, "")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return strings.ToLower(strings.TrimSpace(d))
}

// ValidateIDs checks that a list of record ids is non-empty and positive.
func ValidateIDs(ids []int64) (bool, string) {
	if len(ids) == 0 {
		return false, "ids must be a non-empty array"
	}
	for _, id := range ids {
		if id <= 0 {
			return false, "ids must be positive integers"
		}
	}
	return true, ""
}

// ValidateCampaignName checks a campaign name for presence and length.
func ValidateCampaignName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "name is required"
	}
	if len(name) > 255 {
		return false, "name must be at most 255 characters"
	}
	return true, ""
}

// ValidateKeywords checks a campaign's seed keywords for presence and length.
func ValidateKeywords(keywords string) (bool, string) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return false, "original_keywords is required"
	}
	if len(keywords) > 2000 {
		return false, "original_keywords must be at most 2000 characters"
	}
	return true, ""
}

// ValidateCronAddCount checks the daily add count is within range.
func ValidateCronAddCount(n int) (bool, string) {
	if n < 0 || n > MaxCronAddCount {
		return false, "cron_add_count must be between 0 and 9999"
	}
	return true, ""
}
