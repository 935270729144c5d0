package graph

import (
	"context"

	"bookgraph/internal/auth"
	"bookgraph/internal/authz"

	graphql "github.com/graph-gophers/graphql-go"
)

type idArgs struct {
	ID graphql.ID
}

func (r *Resolver) Author(ctx context.Context, args idArgs) (*AuthorResolver, error) {
	if err := r.authorize(ctx, authz.QueryAuthor, authz.Target{}); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	author, err := r.svc.GetAuthor(ctx, id)
	if err != nil || author == nil {
		return nil, r.fail(authz.QueryAuthor, err)
	}
	return &AuthorResolver{root: r, author: *author}, nil
}

func (r *Resolver) Authors(ctx context.Context, args pageArgs) (*AuthorsResolver, error) {
	if err := r.authorize(ctx, authz.QueryAuthors, authz.Target{}); err != nil {
		return nil, err
	}
	page, err := r.svc.ListAuthors(ctx, args.params(authorOrders))
	if err != nil {
		return nil, r.fail(authz.QueryAuthors, err)
	}
	return &AuthorsResolver{root: r, page: page}, nil
}

func (r *Resolver) Book(ctx context.Context, args idArgs) (*BookResolver, error) {
	if err := r.authorize(ctx, authz.QueryBook, authz.Target{}); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	book, err := r.svc.GetBook(ctx, id)
	if err != nil || book == nil {
		return nil, r.fail(authz.QueryBook, err)
	}
	return &BookResolver{root: r, book: *book}, nil
}

func (r *Resolver) Books(ctx context.Context, args pageArgs) (*BooksResolver, error) {
	if err := r.authorize(ctx, authz.QueryBooks, authz.Target{}); err != nil {
		return nil, err
	}
	page, err := r.svc.ListBooks(ctx, args.params(bookOrders))
	if err != nil {
		return nil, r.fail(authz.QueryBooks, err)
	}
	return &BooksResolver{root: r, page: page}, nil
}

func (r *Resolver) Review(ctx context.Context, args idArgs) (*ReviewResolver, error) {
	if err := r.authorize(ctx, authz.QueryReview, authz.Target{}); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	review, err := r.svc.GetReview(ctx, id)
	if err != nil || review == nil {
		return nil, r.fail(authz.QueryReview, err)
	}
	return &ReviewResolver{root: r, review: *review}, nil
}

func (r *Resolver) SearchBooks(ctx context.Context, args searchArgs) ([]*BookResultResolver, error) {
	if err := r.authorize(ctx, authz.QuerySearchBooks, authz.Target{}); err != nil {
		return nil, err
	}
	results, err := r.svc.SearchBooks(ctx, args.params())
	if err != nil {
		return nil, r.fail(authz.QuerySearchBooks, err)
	}
	out := make([]*BookResultResolver, 0, len(results))
	for _, res := range results {
		out = append(out, &BookResultResolver{root: r, result: res})
	}
	return out, nil
}

func (r *Resolver) SearchPeople(ctx context.Context, args searchArgs) ([]*PersonResolver, error) {
	if err := r.authorize(ctx, authz.QuerySearchPeople, authz.Target{}); err != nil {
		return nil, err
	}
	results, err := r.svc.SearchPeople(ctx, args.params())
	if err != nil {
		return nil, r.fail(authz.QuerySearchPeople, err)
	}
	out := make([]*PersonResolver, 0, len(results))
	for _, res := range results {
		out = append(out, &PersonResolver{root: r, result: res})
	}
	return out, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ Username string }) (*UserResolver, error) {
	if err := r.authorize(ctx, authz.QueryUser, authz.Target{}); err != nil {
		return nil, err
	}
	user, err := r.svc.GetUserByUsername(ctx, args.Username)
	if err != nil || user == nil {
		return nil, r.fail(authz.QueryUser, err)
	}
	return &UserResolver{root: r, user: *user}, nil
}

// Viewer is the user behind the session token, or null when anonymous.
func (r *Resolver) Viewer(ctx context.Context) (*UserResolver, error) {
	if err := r.authorize(ctx, authz.QueryViewer, authz.Target{}); err != nil {
		return nil, err
	}
	id := auth.IdentityFrom(ctx)
	if id == nil {
		return nil, nil
	}
	user, err := r.svc.GetUserByUsername(ctx, id.Username)
	if err != nil || user == nil {
		return nil, r.fail(authz.QueryViewer, err)
	}
	return &UserResolver{root: r, user: *user}, nil
}
