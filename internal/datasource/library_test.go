package datasource

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookgraph/internal/apperr"
	"bookgraph/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReader(store interface{ Seed(string, ...any) }) {
	store.Seed("users", map[string]any{
		"id": 1, "email": "reader@example.com", "username": "reader", "name": "Reader", "password": "digest",
	})
	store.Seed("books",
		entity.Book{ID: 1, Title: "Middlemarch"},
		entity.Book{ID: 2, Title: "Emma"},
		entity.Book{ID: 3, Title: "Persuasion"},
	)
}

func libraryBookIDs(store interface{ Rows(string) []map[string]any }) []any {
	var ids []any
	for _, row := range store.Rows("userBooks") {
		ids = append(ids, row["bookId"])
	}
	return ids
}

func TestAddBooksToLibraryIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	seedReader(store)
	ctx := context.Background()
	in := LibraryInput{UserID: 1, BookIDs: []int{1, 2}}

	user, err := svc.AddBooksToLibrary(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)
	assert.Empty(t, user.Password)
	assert.Equal(t, 2, store.Count(http.MethodPost, "/userBooks"))

	_, err = svc.AddBooksToLibrary(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Count(http.MethodPost, "/userBooks"))
	assert.ElementsMatch(t, []any{float64(1), float64(2)}, libraryBookIDs(store))

	for _, row := range store.Rows("userBooks") {
		assert.Equal(t, "2024-05-04T10:30:00Z", row["createdAt"])
		assert.Equal(t, float64(1), row["userId"])
	}
}

func TestAddBooksToLibraryOnlyInsertsMissing(t *testing.T) {
	svc, store := newTestService(t)
	seedReader(store)
	store.Seed("userBooks", entity.UserBook{UserID: 1, BookID: 2, CreatedAt: fixedNow})

	_, err := svc.AddBooksToLibrary(context.Background(), LibraryInput{UserID: 1, BookIDs: []int{2, 3, 3}})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count(http.MethodPost, "/userBooks"))
	assert.ElementsMatch(t, []any{float64(2), float64(3)}, libraryBookIDs(store))
}

func TestAddBooksToLibraryFailedLookupWritesNothing(t *testing.T) {
	svc, store := newTestService(t)
	seedReader(store)
	store.FailWith(http.MethodGet, "/userBooks", http.StatusInternalServerError)

	_, err := svc.AddBooksToLibrary(context.Background(), LibraryInput{UserID: 1, BookIDs: []int{1, 2}})
	assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
	assert.Zero(t, store.Count(http.MethodPost, "/userBooks"))
}

func TestRemoveBooksFromLibrary(t *testing.T) {
	svc, store := newTestService(t)
	seedReader(store)
	store.Seed("userBooks",
		entity.UserBook{UserID: 1, BookID: 1, CreatedAt: fixedNow},
		entity.UserBook{UserID: 1, BookID: 2, CreatedAt: fixedNow},
		entity.UserBook{UserID: 2, BookID: 1, CreatedAt: fixedNow},
	)
	ctx := context.Background()

	t.Run("absent books are a no-op", func(t *testing.T) {
		user, err := svc.RemoveBooksFromLibrary(ctx, LibraryInput{UserID: 1, BookIDs: []int{3}})
		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		assert.Zero(t, store.Count(http.MethodDelete, "/userBooks"))
		assert.Len(t, store.Rows("userBooks"), 3)
	})

	t.Run("present books are deleted", func(t *testing.T) {
		_, err := svc.RemoveBooksFromLibrary(ctx, LibraryInput{UserID: 1, BookIDs: []int{1, 3}})
		require.NoError(t, err)
		assert.Equal(t, 1, store.Count(http.MethodDelete, "/userBooks"))

		rows := store.Rows("userBooks")
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.False(t, row["userId"] == float64(1) && row["bookId"] == float64(1))
		}
	})
}

func TestLibraryMissingUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddBooksToLibrary(context.Background(), LibraryInput{UserID: 42, BookIDs: []int{1}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUserLibrary(t *testing.T) {
	svc, store := newTestService(t)
	seedReader(store)
	store.Seed("userBooks",
		entity.UserBook{UserID: 1, BookID: 1, CreatedAt: fixedNow.AddDate(0, 0, -3)},
		entity.UserBook{UserID: 1, BookID: 3, CreatedAt: fixedNow.AddDate(0, 0, -1)},
		entity.UserBook{UserID: 1, BookID: 2, CreatedAt: fixedNow.AddDate(0, 0, -2)},
	)

	page, err := svc.UserLibrary(context.Background(), 1, ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Persuasion", "Emma"}, titles(page.Results))
	require.NotNil(t, page.PageInfo)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.Equal(t, 3, page.PageInfo.TotalCount)

	assert.Equal(t, []string{
		"GET /userBooks?_sort=createdAt&_order=desc&_limit=2&_page=1&userId=1&_expand=book",
	}, store.Requests())
}

func TestGetUser(t *testing.T) {
	svc, store := newTestService(t)
	seedReader(store)
	ctx := context.Background()

	byID, err := svc.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", byID.Email)
	assert.Empty(t, byID.Password)

	byName, err := svc.GetUserByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, 1, byName.ID)
	assert.Empty(t, byName.Password)

	missing, err := svc.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = svc.GetUser(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
