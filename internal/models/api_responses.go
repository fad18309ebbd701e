package models

// Pagination describes one page of a list response.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalRecords   int64 `json:"totalRecords"`
	PageSize       int   `json:"pageSize"`
	TotalAvailable int64 `json:"totalAvailable"`
}

// ListResponse is the envelope for every paginated collection.
type ListResponse[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// CountResponse wraps a single count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// DeleteResponse reports how many rows a bulk delete removed.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// ProspectingFilterOptions lists the values the prospecting filters accept.
type ProspectingFilterOptions struct {
	Campaigns    []string `json:"campaigns"`
	TopCountries []string `json:"top_countries"`
	Statuses     []string `json:"statuses"`
}

// EmailFilterOptions lists the values the email filters accept.
type EmailFilterOptions struct {
	Campaigns  []string `json:"campaigns"`
	Verdicts   []string `json:"verdicts"`
	Priorities []string `json:"priorities"`
	GuestPosts []string `json:"guest_posts"`
}
