package datasource

import (
	"context"
	"sort"

	"bookgraph/internal/entity"
	"bookgraph/internal/platform/jsonserver"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind tags which record a SearchResult holds.
type Kind string

const (
	KindAuthor Kind = "Author"
	KindBook   Kind = "Book"
	KindUser   Kind = "User"
)

// SearchResult is one item of a merged search. Exactly the field matching
// Kind is set.
type SearchResult struct {
	Kind   Kind
	Author *entity.Author
	Book   *entity.Book
	User   *entity.User
}

// Key is the string a merged result list is sorted by: the title of a book,
// the name of anything else.
func (r SearchResult) Key() string {
	switch r.Kind {
	case KindBook:
		return r.Book.Title
	case KindAuthor:
		return r.Author.Name
	case KindUser:
		return r.User.Name
	}
	return ""
}

type SearchOrder string

const (
	ResultAsc  SearchOrder = "RESULT_ASC"
	ResultDesc SearchOrder = "RESULT_DESC"
)

type SearchParams struct {
	Query   string
	Exact   bool
	OrderBy SearchOrder
}

// filter matches field exactly, or runs a full-text q search otherwise.
func (p SearchParams) filter(field string) jsonserver.Params {
	params := jsonserver.Params{Limit: searchLimit}
	if p.Exact {
		return params.Where(field, p.Query)
	}
	return params.Where("q", p.Query)
}

// SearchPeople looks up authors and users by name in parallel and returns
// them merged and sorted by name.
func (s *Service) SearchPeople(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	var (
		authors entity.Page[entity.Author]
		users   entity.Page[entity.User]
	)
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		authors, err = list[entity.Author](ctx, s.client, "authors", p.filter("name"))
		return err
	})
	g.Go(func() (err error) {
		users, err = list[entity.User](ctx, s.client, "users", p.filter("name"))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(authors.Results)+len(users.Results))
	results = appendAuthors(results, authors.Results)
	for i := range users.Results {
		u := users.Results[i].Public()
		results = append(results, SearchResult{Kind: KindUser, User: &u})
	}
	sortResults(results, p.OrderBy)
	return results, nil
}

// SearchBooks looks up authors by name and books by title in parallel and
// returns them merged and sorted.
func (s *Service) SearchBooks(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	var (
		authors entity.Page[entity.Author]
		books   entity.Page[entity.Book]
	)
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		authors, err = list[entity.Author](ctx, s.client, "authors", p.filter("name"))
		return err
	})
	g.Go(func() (err error) {
		books, err = list[entity.Book](ctx, s.client, "books", p.filter("title"))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(authors.Results)+len(books.Results))
	results = appendAuthors(results, authors.Results)
	for i := range books.Results {
		results = append(results, SearchResult{Kind: KindBook, Book: &books.Results[i]})
	}
	sortResults(results, p.OrderBy)
	return results, nil
}

func appendAuthors(results []SearchResult, authors []entity.Author) []SearchResult {
	for i := range authors {
		results = append(results, SearchResult{Kind: KindAuthor, Author: &authors[i]})
	}
	return results
}

// sortResults orders by Key with a locale-aware comparison. Equal keys keep
// their concatenation order.
func sortResults(results []SearchResult, order SearchOrder) {
	// A Collator is not safe for concurrent use.
	c := collate.New(language.English)
	desc := order == ResultDesc
	sort.SliceStable(results, func(i, j int) bool {
		if desc {
			return c.CompareString(results[j].Key(), results[i].Key()) < 0
		}
		return c.CompareString(results[i].Key(), results[j].Key()) < 0
	})
}
