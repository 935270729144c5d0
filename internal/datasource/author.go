package datasource

import (
	"context"
	"strings"

	"bookgraph/internal/apperr"
	"bookgraph/internal/entity"
)

// GetAuthor returns the author with id, or nil when there is none.
func (s *Service) GetAuthor(ctx context.Context, id int) (*entity.Author, error) {
	return getByID[entity.Author](ctx, s.client, "authors", id)
}

// ListAuthors returns one page of authors, ordered by name unless p says
// otherwise.
func (s *Service) ListAuthors(ctx context.Context, p ListParams) (entity.Page[entity.Author], error) {
	return list[entity.Author](ctx, s.client, "authors", p.store(DefaultAuthorOrder))
}

// AuthorBooks returns the books linked to authorID in the store's link order.
func (s *Service) AuthorBooks(ctx context.Context, authorID int) ([]entity.Book, error) {
	links, err := find[entity.BookAuthor](ctx, s.client, "bookAuthors", "authorId", authorID, "_expand", "book")
	if err != nil {
		return nil, err
	}
	books := make([]entity.Book, 0, len(links))
	for _, l := range links {
		if l.Book != nil {
			books = append(books, *l.Book)
		}
	}
	return books, nil
}

func (s *Service) CreateAuthor(ctx context.Context, name string) (*entity.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("author name is required")
	}
	var created entity.Author
	if _, err := s.client.Post(ctx, "/authors", map[string]string{"name": name}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
