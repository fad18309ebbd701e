package query

import (
	"math"
	"strconv"
	"strings"

	"outreach/internal/models"
)

// Args accumulates positional arguments for a statement.
type Args struct {
	vals []any
}

// Bind appends v and returns its placeholder.
func (a *Args) Bind(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

// Values returns the bound arguments in placeholder order.
func (a *Args) Values() []any {
	return a.vals
}

// Predicate renders a condition, binding whatever values it needs.
type Predicate func(a *Args) string

// Eq is a Predicate for expr = v.
func Eq(expr string, v any) Predicate {
	return func(a *Args) string {
		return expr + " = " + a.Bind(v)
	}
}

// Query is a built list statement pair sharing one argument list.
type Query struct {
	Select string
	Count  string
	Args   []any

	Page     int
	PageSize int
	Limit    int
	Offset   int
	// Empty is set when the requested page lies entirely past the cap or
	// past any representable offset. Limit and Offset are then zero.
	Empty bool
	Cap   int
}

// Build composes the filtered, ordered, paged statements for p. Scope
// predicates are always applied ahead of the request's own filters.
func (c *Collection) Build(p Params, scope ...Predicate) Query {
	args := &Args{}
	where := c.where(p, args, scope)

	q := Query{
		Args:     args.Values(),
		Page:     ParsePage(first(p, "page")),
		PageSize: ParsePageSize(first(p, "page_size"), c.PageSizes, c.DefaultPageSize),
		Cap:      c.Cap,
	}
	if pastEnd(q.Page, q.PageSize, c.Cap) {
		q.Empty = true
	} else {
		q.Offset = (q.Page - 1) * q.PageSize
		q.Limit = q.PageSize
		if c.Cap > 0 && q.Offset+q.Limit > c.Cap {
			q.Limit = c.Cap - q.Offset
		}
	}

	q.Count = "SELECT COUNT(*) FROM " + c.From + where
	q.Select = "SELECT " + c.Columns + " FROM " + c.From + where +
		" ORDER BY " + c.OrderBy(first(p, "order")) +
		" LIMIT " + strconv.Itoa(q.Limit) + " OFFSET " + strconv.Itoa(q.Offset)
	return q
}

// pastEnd reports whether page starts at or beyond the cap, or at an offset
// that does not fit in an int. The check never multiplies page by size.
func pastEnd(page, size, limit int) bool {
	if size <= 0 {
		return true
	}
	skipped := page - 1
	if limit > 0 {
		return skipped >= (limit+size-1)/size
	}
	return skipped > (math.MaxInt-size)/size
}

// Where renders only the WHERE clause for p, for callers that aggregate
// over a filtered collection.
func (c *Collection) Where(p Params, scope ...Predicate) (string, []any) {
	args := &Args{}
	where := c.where(p, args, scope)
	return where, args.Values()
}

func (c *Collection) where(p Params, args *Args, scope []Predicate) string {
	var conds []string
	for _, s := range scope {
		conds = append(conds, s(args))
	}
	for _, f := range c.Filters {
		if cond := f.render(p, args); cond != "" {
			conds = append(conds, cond)
		}
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (f Filter) render(p Params, args *Args) string {
	switch f.Kind {
	case Contains:
		v := first(p, f.Params...)
		if v == "" {
			return ""
		}
		return f.Expr + " ILIKE " + args.Bind("%"+escapeLike(v)+"%")
	case Between:
		r, ok := ParseRange(first(p, f.Params...))
		if !ok {
			return ""
		}
		return f.Expr + " BETWEEN " + args.Bind(r.Min) + "::numeric AND " + args.Bind(r.Max) + "::numeric"
	case IntBetween:
		lo, hi, ok := ParseIntRange(first(p, f.Params...))
		if !ok {
			return ""
		}
		return f.Expr + " BETWEEN " + args.Bind(lo) + "::bigint AND " + args.Bind(hi) + "::bigint"
	case OneOf:
		vals := f.values(p)
		if len(vals) == 0 {
			return ""
		}
		return f.Expr + " = ANY(" + args.Bind(vals) + "::text[])"
	case Present:
		want, ok := ParseFlag(first(p, f.Params...))
		if !ok {
			return ""
		}
		if want {
			return "(" + f.Expr + " IS NOT NULL AND " + f.Expr + " <> '')"
		}
		return "(" + f.Expr + " IS NULL OR " + f.Expr + " = '')"
	case Member:
		vals := f.values(p)
		if len(vals) == 0 {
			return ""
		}
		return "EXISTS (SELECT 1 FROM jsonb_array_elements(CASE WHEN jsonb_typeof(" + f.Expr + ") = 'array' THEN " +
			f.Expr + " ELSE '[]'::jsonb END) AS entry(v) WHERE jsonb_typeof(entry.v) = 'array' AND UPPER(entry.v->>0) = ANY(" +
			args.Bind(vals) + "::text[]))"
	}
	return ""
}

func (f Filter) values(p Params) []string {
	canon := f.Canon
	if canon == nil {
		canon = func(s string) (string, bool) { return s, s != "" }
	}
	for _, name := range f.Params {
		if vals := ParseList(all(p, name), canon); len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// OrderBy renders the ORDER BY list for a raw "field,direction" value.
// Unknown fields or directions fall back to the default order.
func (c *Collection) OrderBy(raw string) string {
	terms := c.DefaultOrder
	if field, dir := ParseOrder(raw); field != "" {
		if expr, ok := c.Orders[field]; ok {
			if dir == "" {
				dir = c.DefaultDir
			}
			if dir == "ASC" || dir == "DESC" {
				terms = []Term{{Expr: expr, Desc: dir == "DESC"}}
			}
		}
	}

	parts := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		if t.Expr == c.Tiebreak {
			continue
		}
		dir := " ASC"
		if t.Desc {
			dir = " DESC"
		}
		parts = append(parts, t.Expr+dir+" NULLS LAST")
	}
	tiebreak := c.Tiebreak + " ASC"
	for _, t := range terms {
		if t.Expr == c.Tiebreak && t.Desc {
			tiebreak = c.Tiebreak + " DESC"
		}
	}
	return strings.Join(append(parts, tiebreak), ", ")
}

// Pagination builds the response envelope. matched is the filtered row
// count before any cap; available is the unfiltered collection size.
func (q Query) Pagination(matched, available int64) models.Pagination {
	records := matched
	if q.Cap > 0 && records > int64(q.Cap) {
		records = int64(q.Cap)
	}
	pages := int((records + int64(q.PageSize) - 1) / int64(q.PageSize))
	if pages < 1 {
		pages = 1
	}
	return models.Pagination{
		CurrentPage:    q.Page,
		TotalPages:     pages,
		TotalRecords:   records,
		PageSize:       q.PageSize,
		TotalAvailable: available,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
