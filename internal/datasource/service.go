// Package datasource maps graph operations onto calls against the REST
// resource store. Each exported method is one domain action: it builds the
// store's query strings, issues the calls (in parallel where they are
// independent), and shapes the results.
//
// Nothing is cached between calls; every operation re-reads the store.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"
	"bookgraph/internal/entity"
	"bookgraph/internal/platform/jsonserver"

	"go.uber.org/zap"
)

// Default sort orders for list operations, in the store's field_direction
// form.
const (
	DefaultAuthorOrder  = "name_asc"
	DefaultBookOrder    = "title_asc"
	DefaultReviewOrder  = "createdAt_desc"
	DefaultLibraryOrder = "createdAt_desc"

	searchLimit = 50
)

// ListParams is the pagination and ordering requested for a list. Zero
// values mean "not requested".
type ListParams struct {
	Limit   int
	Page    int
	OrderBy string
}

func (p ListParams) store(defaultOrder string) jsonserver.Params {
	orderBy := p.OrderBy
	if orderBy == "" {
		orderBy = defaultOrder
	}
	return jsonserver.Params{Limit: p.Limit, Page: p.Page, OrderBy: orderBy}
}

// Service runs mediation operations against one store.
type Service struct {
	client *jsonserver.Client
	tokens *auth.Tokens
	logger *zap.Logger
	now    func() time.Time
}

func NewService(client *jsonserver.Client, tokens *auth.Tokens, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Ping checks that the store answers a minimal list request.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, "/authors?_limit=1")
}

// getByID fetches /resource/id. A store 404 yields (nil, nil).
func getByID[T any](ctx context.Context, c *jsonserver.Client, resource string, id int) (*T, error) {
	var out T
	if _, err := c.Get(ctx, fmt.Sprintf("/%s/%d", resource, id), &out); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// list fetches one page of resource and derives its PageInfo from the
// headers of that same response.
func list[T any](ctx context.Context, c *jsonserver.Client, resource string, p jsonserver.Params) (entity.Page[T], error) {
	qs, err := p.Encode()
	if err != nil {
		return entity.Page[T]{}, err
	}
	var results []T
	resp, err := c.Get(ctx, "/"+resource+qs, &results)
	if err != nil {
		return entity.Page[T]{}, err
	}
	info, err := resp.Pagination.PageInfo(p.Limit, p.Page)
	if err != nil {
		return entity.Page[T]{}, err
	}
	if results == nil {
		results = []T{}
	}
	return entity.Page[T]{Results: results, PageInfo: info}, nil
}

// find runs an unpaginated filter query such as /users?username=x.
func find[T any](ctx context.Context, c *jsonserver.Client, resource string, kv ...any) ([]T, error) {
	var out []T
	if _, err := c.Get(ctx, "/"+resource+jsonserver.Where(kv...), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
