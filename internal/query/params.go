// Package query turns raw list parameters into parameterized SQL.
//
// Every optional refinement degrades to "no filter" on malformed input.
// Field names and enumerated values are matched against fixed allow-lists;
// user values only ever reach the database as bound arguments.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Params carries raw query-string values. Repeated keys keep every value.
type Params = url.Values

// ParseParams parses a raw query string. An unparseable string yields the
// pairs that could be read.
func ParseParams(raw string) Params {
	p, _ := url.ParseQuery(raw)
	if p == nil {
		p = Params{}
	}
	return p
}

// first returns the first non-empty value found under any of the keys.
func first(p Params, keys ...string) string {
	for _, k := range keys {
		for _, v := range p[k] {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// all returns every value under the keys, also accepting the "key[]" form,
// with comma-joined values split apart.
func all(p Params, keys ...string) []string {
	var out []string
	for _, k := range keys {
		for _, name := range []string{k, k + "[]"} {
			for _, v := range p[name] {
				for _, part := range strings.Split(v, ",") {
					if part = strings.TrimSpace(part); part != "" {
						out = append(out, part)
					}
				}
			}
		}
	}
	return out
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// ParseRange parses "min,max". Anything other than exactly two finite
// numbers with min <= max reports ok=false.
func ParseRange(raw string) (Range, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return Range{}, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || math.IsNaN(lo) || math.IsInf(lo, 0) {
		return Range{}, false
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(hi) || math.IsInf(hi, 0) {
		return Range{}, false
	}
	if lo > hi {
		return Range{}, false
	}
	return Range{Min: lo, Max: hi}, true
}

// ParseIntRange is ParseRange restricted to whole numbers.
func ParseIntRange(raw string) (lo, hi int64, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || a > b {
		return 0, 0, false
	}
	return a, b, true
}

// ParseFlag reads a tri-state boolean: "true"/"1", "false"/"0", or unset.
func ParseFlag(raw string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// ParseList keeps the values accepted by canon, in input order and without
// duplicates. canon returns the canonical spelling and whether the value is
// allowed at all.
func ParseList(values []string, canon func(string) (string, bool)) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		c, ok := canon(v)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// AllowList returns a canonicalizer that matches values case-insensitively
// against a closed vocabulary and returns the vocabulary's spelling.
func AllowList(vocabulary ...string) func(string) (string, bool) {
	index := make(map[string]string, len(vocabulary))
	for _, v := range vocabulary {
		index[strings.ToLower(v)] = v
	}
	return func(s string) (string, bool) {
		c, ok := index[strings.ToLower(strings.TrimSpace(s))]
		return c, ok
	}
}

// ParseOrder splits "field,direction". The direction is upper-cased and
// empty when absent.
func ParseOrder(raw string) (field, dir string) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	field = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		dir = strings.ToUpper(strings.TrimSpace(parts[1]))
	}
	return field, dir
}

// ParsePage returns a 1-indexed page number, defaulting to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageSize returns raw when it is one of the allowed sizes, otherwise def.
func ParsePageSize(raw string, allowed []int, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	for _, a := range allowed {
		if n == a {
			return n
		}
	}
	return def
}
