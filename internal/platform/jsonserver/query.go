package jsonserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bookgraph/internal/apperr"
)

// MaxPageSize is the hard ceiling on a requested page size, independent of
// whatever the store itself allows.
const MaxPageSize = 100

// ErrPageSizeExceeded is returned by Params.Encode when Limit > MaxPageSize.
var ErrPageSizeExceeded = apperr.InvalidArgument("maximum page size exceeded")

// Filter is a single field=value pair passed through to the store.
type Filter struct {
	Key   string
	Value string
}

// Params describes a list request in the store's query dialect. Zero Limit
// and Page mean "not requested". OrderBy is a compound field_direction token
// such as "title_asc".
type Params struct {
	Limit   int
	Page    int
	OrderBy string
	Filters []Filter
}

// Where appends a filter. Filters are encoded in the order they were added.
func (p Params) Where(key string, value any) Params {
	filters := make([]Filter, len(p.Filters), len(p.Filters)+1)
	copy(filters, p.Filters)
	p.Filters = append(filters, Filter{Key: key, Value: fmt.Sprint(value)})
	return p
}

func (p Params) empty() bool {
	return p.Limit == 0 && p.Page == 0 && p.OrderBy == "" && len(p.Filters) == 0
}

// Encode renders p as a query string including the leading '?', or "" when
// p carries nothing at all.
//
// Once anything is present the page is always sent (defaulting to 1), so the
// store paginates with its own default limit when Limit is zero.
func (p Params) Encode() (string, error) {
	if p.Limit > MaxPageSize {
		return "", ErrPageSizeExceeded
	}
	if p.Limit < 0 || p.Page < 0 {
		return "", apperr.InvalidArgument("page and limit must not be negative")
	}
	if p.empty() {
		return "", nil
	}

	parts := make([]string, 0, 4+len(p.Filters))
	if sort, order := SplitOrderBy(p.OrderBy); sort != "" {
		parts = append(parts, "_sort="+url.QueryEscape(sort))
		if order != "" {
			parts = append(parts, "_order="+url.QueryEscape(order))
		}
	}
	if p.Limit > 0 {
		parts = append(parts, "_limit="+strconv.Itoa(p.Limit))
	}
	page := p.Page
	if page == 0 {
		page = 1
	}
	parts = append(parts, "_page="+strconv.Itoa(page))
	for _, f := range p.Filters {
		parts = append(parts, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
	}
	return "?" + strings.Join(parts, "&"), nil
}

// Where builds an unpaginated filter-only query string from alternating
// key, value arguments, for point lookups such as /users?username=x.
func Where(kv ...any) string {
	if len(kv) == 0 {
		return ""
	}
	parts := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		parts = append(parts, url.QueryEscape(fmt.Sprint(kv[i]))+"="+url.QueryEscape(fmt.Sprint(kv[i+1])))
	}
	return "?" + strings.Join(parts, "&")
}

// SplitOrderBy splits "createdAt_desc" into ("createdAt", "desc"). The split
// happens on the last underscore so field names may contain underscores.
func SplitOrderBy(orderBy string) (field, direction string) {
	if orderBy == "" {
		return "", ""
	}
	i := strings.LastIndex(orderBy, "_")
	if i < 0 {
		return orderBy, ""
	}
	return orderBy[:i], orderBy[i+1:]
}
