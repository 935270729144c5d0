package graph

import (
	"context"

	"bookgraph/internal/auth"
	"bookgraph/internal/authz"
	"bookgraph/internal/datasource"
	"bookgraph/internal/entity"

	graphql "github.com/graph-gophers/graphql-go"
)

type AuthorResolver struct {
	root   *Resolver
	author entity.Author
}

func (a *AuthorResolver) ID() graphql.ID { return toID(a.author.ID) }
func (a *AuthorResolver) Name() string   { return a.author.Name }

func (a *AuthorResolver) Books(ctx context.Context) ([]*BookResolver, error) {
	books, err := a.root.svc.AuthorBooks(ctx, a.author.ID)
	if err != nil {
		return nil, a.root.fail("Author.books", err)
	}
	return a.root.books(books), nil
}

type BookResolver struct {
	root *Resolver
	book entity.Book
}

func (b *BookResolver) ID() graphql.ID   { return toID(b.book.ID) }
func (b *BookResolver) Title() string    { return b.book.Title }
func (b *BookResolver) Cover() *string   { return b.book.Cover }
func (b *BookResolver) Genre() *string   { return b.book.Genre }
func (b *BookResolver) Summary() *string { return b.book.Summary }

func (b *BookResolver) Authors(ctx context.Context) ([]*AuthorResolver, error) {
	authors, err := b.root.svc.BookAuthors(ctx, b.book.ID)
	if err != nil {
		return nil, b.root.fail("Book.authors", err)
	}
	return b.root.authors(authors), nil
}

func (b *BookResolver) Reviews(ctx context.Context, args pageArgs) (*ReviewsResolver, error) {
	page, err := b.root.svc.BookReviews(ctx, b.book.ID, args.params(reviewOrders))
	if err != nil {
		return nil, b.root.fail("Book.reviews", err)
	}
	return b.root.reviewPage(page), nil
}

type ReviewResolver struct {
	root   *Resolver
	review entity.Review
}

func (r *ReviewResolver) ID() graphql.ID       { return toID(r.review.ID) }
func (r *ReviewResolver) Rating() Rating       { return Rating(r.review.Rating) }
func (r *ReviewResolver) Text() *string        { return r.review.Text }
func (r *ReviewResolver) ReviewedOn() DateTime { return DateTime{r.review.CreatedAt} }

func (r *ReviewResolver) Book(ctx context.Context) (*BookResolver, error) {
	book, err := r.root.svc.GetBook(ctx, r.review.BookID)
	if err != nil {
		return nil, r.root.fail("Review.book", err)
	}
	if book == nil {
		return nil, nil
	}
	return &BookResolver{root: r.root, book: *book}, nil
}

func (r *ReviewResolver) Reviewer(ctx context.Context) (*UserResolver, error) {
	user, err := r.root.svc.GetUser(ctx, r.review.UserID)
	if err != nil {
		return nil, r.root.fail("Review.reviewer", err)
	}
	if user == nil {
		return nil, nil
	}
	return &UserResolver{root: r.root, user: *user}, nil
}

type UserResolver struct {
	root *Resolver
	user entity.User
	// session is set when the user was just authenticated by signUp or
	// login, whose request context is still anonymous.
	session *auth.Identity
}

func (u *UserResolver) ID() graphql.ID   { return toID(u.user.ID) }
func (u *UserResolver) Name() string     { return u.user.Name }
func (u *UserResolver) Username() string { return u.user.Username }

// Email is only resolved for the user themselves.
func (u *UserResolver) Email(ctx context.Context) (*string, error) {
	if u.session != nil {
		ctx = auth.ContextWithIdentity(ctx, u.session)
	}
	if err := u.root.authorize(ctx, authz.FieldUserEmail, authz.Target{UserID: u.user.ID}); err != nil {
		return nil, err
	}
	return &u.user.Email, nil
}

func (u *UserResolver) Library(ctx context.Context, args pageArgs) (*BooksResolver, error) {
	page, err := u.root.svc.UserLibrary(ctx, u.user.ID, args.params(libraryOrders))
	if err != nil {
		return nil, u.root.fail("User.library", err)
	}
	return &BooksResolver{root: u.root, page: page}, nil
}

func (u *UserResolver) Reviews(ctx context.Context, args pageArgs) (*ReviewsResolver, error) {
	page, err := u.root.svc.UserReviews(ctx, u.user.ID, args.params(reviewOrders))
	if err != nil {
		return nil, u.root.fail("User.reviews", err)
	}
	return u.root.reviewPage(page), nil
}

type PageInfoResolver struct {
	info entity.PageInfo
}

func (p *PageInfoResolver) HasNextPage() bool { return p.info.HasNextPage }
func (p *PageInfoResolver) HasPrevPage() bool { return p.info.HasPrevPage }
func (p *PageInfoResolver) Page() int32       { return int32(p.info.Page) }
func (p *PageInfoResolver) TotalCount() int32 { return int32(p.info.TotalCount) }

func (p *PageInfoResolver) PerPage() *int32 {
	if p.info.PerPage == nil {
		return nil
	}
	n := int32(*p.info.PerPage)
	return &n
}

func pageInfo(info *entity.PageInfo) *PageInfoResolver {
	if info == nil {
		return nil
	}
	return &PageInfoResolver{info: *info}
}

type AuthorsResolver struct {
	root *Resolver
	page entity.Page[entity.Author]
}

func (a *AuthorsResolver) Results() []*AuthorResolver  { return a.root.authors(a.page.Results) }
func (a *AuthorsResolver) PageInfo() *PageInfoResolver { return pageInfo(a.page.PageInfo) }

type BooksResolver struct {
	root *Resolver
	page entity.Page[entity.Book]
}

func (b *BooksResolver) Results() []*BookResolver    { return b.root.books(b.page.Results) }
func (b *BooksResolver) PageInfo() *PageInfoResolver { return pageInfo(b.page.PageInfo) }

type ReviewsResolver struct {
	root *Resolver
	page entity.Page[entity.Review]
}

func (r *ReviewsResolver) Results() []*ReviewResolver {
	out := make([]*ReviewResolver, 0, len(r.page.Results))
	for _, review := range r.page.Results {
		out = append(out, &ReviewResolver{root: r.root, review: review})
	}
	return out
}

func (r *ReviewsResolver) PageInfo() *PageInfoResolver { return pageInfo(r.page.PageInfo) }

type AuthPayloadResolver struct {
	root    *Resolver
	session *datasource.Session
}

func (a *AuthPayloadResolver) Token() string { return a.session.Token }

func (a *AuthPayloadResolver) Viewer() *UserResolver {
	viewer := *a.session.Viewer
	return &UserResolver{
		root:    a.root,
		user:    viewer,
		session: &auth.Identity{UserID: viewer.ID, Username: viewer.Username},
	}
}

// PersonResolver is the Person union: an Author or a User.
type PersonResolver struct {
	root   *Resolver
	result datasource.SearchResult
}

func (p *PersonResolver) ToAuthor() (*AuthorResolver, bool) {
	if p.result.Kind != datasource.KindAuthor {
		return nil, false
	}
	return &AuthorResolver{root: p.root, author: *p.result.Author}, true
}

func (p *PersonResolver) ToUser() (*UserResolver, bool) {
	if p.result.Kind != datasource.KindUser {
		return nil, false
	}
	return &UserResolver{root: p.root, user: *p.result.User}, true
}

// BookResultResolver is the BookResult union: a Book or an Author.
type BookResultResolver struct {
	root   *Resolver
	result datasource.SearchResult
}

func (b *BookResultResolver) ToBook() (*BookResolver, bool) {
	if b.result.Kind != datasource.KindBook {
		return nil, false
	}
	return &BookResolver{root: b.root, book: *b.result.Book}, true
}

func (b *BookResultResolver) ToAuthor() (*AuthorResolver, bool) {
	if b.result.Kind != datasource.KindAuthor {
		return nil, false
	}
	return &AuthorResolver{root: b.root, author: *b.result.Author}, true
}

func (r *Resolver) authors(authors []entity.Author) []*AuthorResolver {
	out := make([]*AuthorResolver, 0, len(authors))
	for _, a := range authors {
		out = append(out, &AuthorResolver{root: r, author: a})
	}
	return out
}

func (r *Resolver) books(books []entity.Book) []*BookResolver {
	out := make([]*BookResolver, 0, len(books))
	for _, b := range books {
		out = append(out, &BookResolver{root: r, book: b})
	}
	return out
}

func (r *Resolver) reviewPage(page entity.Page[entity.Review]) *ReviewsResolver {
	return &ReviewsResolver{root: r, page: page}
}
