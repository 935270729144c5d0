package datasource

import (
	"context"
	"fmt"

	"bookgraph/internal/entity"

	"golang.org/x/sync/errgroup"
)

type LibraryInput struct {
	UserID  int
	BookIDs []int
}

// GetUser returns the user with id, or nil when there is none.
func (s *Service) GetUser(ctx context.Context, id int) (*entity.User, error) {
	u, err := getByID[entity.User](ctx, s.client, "users", id)
	if err != nil || u == nil {
		return nil, err
	}
	public := u.Public()
	return &public, nil
}

// GetUserByUsername returns the first user with username, or nil.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.findUser(ctx, "username", username)
	if err != nil || u == nil {
		return nil, err
	}
	public := u.Public()
	return &public, nil
}

// findUser returns the stored record, password digest included.
func (s *Service) findUser(ctx context.Context, field, value string) (*entity.User, error) {
	users, err := find[entity.User](ctx, s.client, "users", field, value)
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return &users[0], nil
}

// UserLibrary returns one page of the books in userID's library, most
// recently added first unless p says otherwise.
func (s *Service) UserLibrary(ctx context.Context, userID int, p ListParams) (entity.Page[entity.Book], error) {
	params := p.store(DefaultLibraryOrder).Where("userId", userID).Where("_expand", "book")
	rows, err := list[entity.UserBook](ctx, s.client, "userBooks", params)
	if err != nil {
		return entity.Page[entity.Book]{}, err
	}
	books := make([]entity.Book, 0, len(rows.Results))
	for _, row := range rows.Results {
		if row.Book != nil {
			books = append(books, *row.Book)
		}
	}
	return entity.Page[entity.Book]{Results: books, PageInfo: rows.PageInfo}, nil
}

// AddBooksToLibrary inserts a library row for every requested book that is
// not already in the user's library, so repeating a call is a no-op.
func (s *Service) AddBooksToLibrary(ctx context.Context, in LibraryInput) (*entity.User, error) {
	bookIDs := uniqueIDs(in.BookIDs)
	existing, err := s.libraryRows(ctx, in.UserID, bookIDs)
	if err != nil {
		return nil, err
	}
	present := make(map[int]struct{}, len(existing))
	for _, row := range existing {
		present[row.BookID] = struct{}{}
	}

	now := s.now().UTC()
	g := new(errgroup.Group)
	for _, bookID := range bookIDs {
		bookID := bookID
		if _, ok := present[bookID]; ok {
			continue
		}
		g.Go(func() error {
			row := entity.UserBook{UserID: in.UserID, BookID: bookID, CreatedAt: now}
			_, err := s.client.Post(ctx, "/userBooks", row, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.refreshedUser(ctx, in.UserID)
}

// RemoveBooksFromLibrary deletes the library rows of the requested books.
// Books that are not in the library are ignored.
func (s *Service) RemoveBooksFromLibrary(ctx context.Context, in LibraryInput) (*entity.User, error) {
	existing, err := s.libraryRows(ctx, in.UserID, uniqueIDs(in.BookIDs))
	if err != nil {
		return nil, err
	}

	g := new(errgroup.Group)
	for _, row := range existing {
		row := row
		g.Go(func() error {
			_, err := s.client.Delete(ctx, fmt.Sprintf("/userBooks/%d", row.ID))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.refreshedUser(ctx, in.UserID)
}

// libraryRows fetches the existing (userID, bookID) rows, one call per book,
// in parallel.
func (s *Service) libraryRows(ctx context.Context, userID int, bookIDs []int) ([]entity.UserBook, error) {
	found := make([][]entity.UserBook, len(bookIDs))
	g := new(errgroup.Group)
	for i, bookID := range bookIDs {
		i, bookID := i, bookID
		g.Go(func() (err error) {
			found[i], err = find[entity.UserBook](ctx, s.client, "userBooks", "userId", userID, "bookId", bookID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []entity.UserBook
	for _, f := range found {
		rows = append(rows, f...)
	}
	return rows, nil
}

// refreshedUser re-reads the owning user. Unlike GetUser a missing user is an
// error here.
func (s *Service) refreshedUser(ctx context.Context, id int) (*entity.User, error) {
	var u entity.User
	if _, err := s.client.Get(ctx, fmt.Sprintf("/users/%d", id), &u); err != nil {
		return nil, err
	}
	public := u.Public()
	return &public, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
