package db

import "errors"

// Domain-level database error sentinels.
var (
	// Campaign errors
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrDuplicateCampaign = errors.New("campaign name already exists")

	// Email errors
	ErrEmailNotFound      = errors.New("email not found")
	ErrGenerationNotFound = errors.New("no generated email to update")
)
