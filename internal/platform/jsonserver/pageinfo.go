package jsonserver

import (
	"net/http"
	"strconv"
	"strings"

	"bookgraph/internal/apperr"
	"bookgraph/internal/entity"

	"github.com/tomnomnom/linkheader"
)

const (
	headerLink       = "Link"
	headerTotalCount = "X-Total-Count"
)

// Pagination holds the pagination headers of a single response. It is
// returned alongside the body of every call and never shared between calls.
type Pagination struct {
	Link       string
	TotalCount string
}

func paginationFrom(h http.Header) Pagination {
	return Pagination{
		Link:       h.Get(headerLink),
		TotalCount: h.Get(headerTotalCount),
	}
}

// PageInfo translates the captured headers into a PageInfo for a request
// made with the given limit and page (zero meaning "not requested"). It
// returns nil when the store reported no total count.
func (p Pagination) PageInfo(limit, page int) (*entity.PageInfo, error) {
	if p.TotalCount == "" {
		return nil, nil
	}
	total, err := strconv.Atoi(strings.TrimSpace(p.TotalCount))
	if err != nil {
		return nil, apperr.Upstreamf(err, "invalid %s header %q", headerTotalCount, p.TotalCount)
	}

	info := &entity.PageInfo{
		Page:       page,
		TotalCount: total,
	}
	if info.Page == 0 {
		info.Page = 1
	}
	if limit > 0 {
		perPage := limit
		info.PerPage = &perPage
	}
	if p.Link != "" {
		links := linkheader.Parse(p.Link)
		info.HasNextPage = len(links.FilterByRel("next")) > 0
		info.HasPrevPage = len(links.FilterByRel("prev")) > 0
	}
	return info, nil
}
