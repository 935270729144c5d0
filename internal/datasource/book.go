package datasource

import (
	"context"
	"strings"

	"bookgraph/internal/apperr"
	"bookgraph/internal/entity"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CreateBookInput struct {
	Title     string
	AuthorIDs []int
	Cover     *string
	Genre     *string
	Summary   *string
}

type newBook struct {
	Title   string  `json:"title"`
	Cover   *string `json:"cover,omitempty"`
	Genre   *string `json:"genre,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// GetBook returns the book with id, or nil when there is none.
func (s *Service) GetBook(ctx context.Context, id int) (*entity.Book, error) {
	return getByID[entity.Book](ctx, s.client, "books", id)
}

// ListBooks returns one page of books, ordered by title unless p says
// otherwise.
func (s *Service) ListBooks(ctx context.Context, p ListParams) (entity.Page[entity.Book], error) {
	return list[entity.Book](ctx, s.client, "books", p.store(DefaultBookOrder))
}

// BookAuthors returns the authors linked to bookID in the store's link order.
func (s *Service) BookAuthors(ctx context.Context, bookID int) ([]entity.Author, error) {
	links, err := find[entity.BookAuthor](ctx, s.client, "bookAuthors", "bookId", bookID, "_expand", "author")
	if err != nil {
		return nil, err
	}
	authors := make([]entity.Author, 0, len(links))
	for _, l := range links {
		if l.Author != nil {
			authors = append(authors, *l.Author)
		}
	}
	return authors, nil
}

// CreateBook inserts the book, then links each author to it in parallel.
// A failed link does not remove the book: the error is returned and the book
// stays in the store with whichever links succeeded.
func (s *Service) CreateBook(ctx context.Context, in CreateBookInput) (*entity.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.InvalidArgument("book title is required")
	}

	var book entity.Book
	payload := newBook{
		Title:   title,
		Cover:   emptyToNil(in.Cover),
		Genre:   emptyToNil(in.Genre),
		Summary: emptyToNil(in.Summary),
	}
	if _, err := s.client.Post(ctx, "/books", payload, &book); err != nil {
		return nil, err
	}
	if len(in.AuthorIDs) == 0 {
		return &book, nil
	}

	g := new(errgroup.Group)
	for _, authorID := range in.AuthorIDs {
		authorID := authorID
		g.Go(func() error {
			link := entity.BookAuthor{BookID: book.ID, AuthorID: authorID}
			_, err := s.client.Post(ctx, "/bookAuthors", link, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("book created with incomplete author links",
			zap.Int("book_id", book.ID),
			zap.Ints("author_ids", in.AuthorIDs),
			zap.Error(err),
		)
		return nil, err
	}
	return &book, nil
}
