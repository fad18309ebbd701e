package query

// Kind selects how a filter turns its parameter into a predicate.
type Kind int

const (
	// Contains is a case-insensitive substring match.
	Contains Kind = iota
	// Between is an inclusive numeric range given as "min,max".
	Between
	// IntBetween is Between restricted to whole numbers.
	IntBetween
	// OneOf matches any of the given values. With a Canon func, values outside
	// its vocabulary are dropped.
	OneOf
	// Present filters on whether a text expression is non-empty.
	Present
	// Member matches a JSON array of [code, count] tuples containing any of
	// the given codes.
	Member
)

// Filter binds request parameters to a SQL expression.
type Filter struct {
	// Params lists accepted parameter names; the first one present wins.
	Params []string
	Kind   Kind
	Expr   string
	Canon  func(string) (string, bool)
}

// Term is one ORDER BY key.
type Term struct {
	Expr string
	Desc bool
}

// Collection describes one listable record type: where it lives, what may be
// filtered and sorted, and how it is paged.
type Collection struct {
	Columns string
	From    string
	Filters []Filter

	// Orders maps accepted order field names to SQL expressions.
	Orders       map[string]string
	DefaultOrder []Term
	// DefaultDir applies when the order parameter carries no direction.
	// Empty means a direction is required.
	DefaultDir string
	// Tiebreak is appended ascending to every ORDER BY.
	Tiebreak string

	PageSizes       []int
	DefaultPageSize int
	// Cap bounds the rows considered for paging. Zero means uncapped.
	Cap int
}
