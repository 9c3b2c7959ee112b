package employee

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Page*Limit inside int for any permitted Limit.
	MaxPage = math.MaxInt / MaxLimit
)

type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

// ParseListQuery turns raw query-string values into a ListQuery. Missing,
// unparsable or non-positive values fall back to the defaults.
func ParseListQuery(search, page, limit string) ListQuery {
	return ListQuery{
		Search: search,
		Page:   parsePositive(page, DefaultPage),
		Limit:  parsePositive(limit, DefaultLimit),
	}.Normalize()
}

func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type ListResult struct {
	Employees []Employee
	Total     int64
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
