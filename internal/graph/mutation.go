package graph

import (
	"context"

	"bookgraph/internal/authz"
	"bookgraph/internal/datasource"

	graphql "github.com/graph-gophers/graphql-go"
)

type createBookInput struct {
	AuthorIDs *[]graphql.ID
	Cover     *string
	Genre     *string
	Summary   *string
	Title     string
}

type createReviewInput struct {
	BookID     graphql.ID
	Rating     Rating
	ReviewerID graphql.ID
	Text       *string
}

type updateReviewInput struct {
	ID     graphql.ID
	Rating Rating
	Text   *string
}

type signUpInput struct {
	Email    string
	Name     string
	Password Password
	Username string
}

type libraryInput struct {
	BookIDs []graphql.ID
	UserID  graphql.ID
}

func (in libraryInput) parse() (datasource.LibraryInput, error) {
	userID, err := parseID(in.UserID)
	if err != nil {
		return datasource.LibraryInput{}, err
	}
	bookIDs, err := parseIDs(in.BookIDs)
	if err != nil {
		return datasource.LibraryInput{}, err
	}
	return datasource.LibraryInput{UserID: userID, BookIDs: bookIDs}, nil
}

func (r *Resolver) SignUp(ctx context.Context, args struct{ Input signUpInput }) (*AuthPayloadResolver, error) {
	if err := r.authorize(ctx, authz.MutationSignUp, authz.Target{}); err != nil {
		return nil, err
	}
	in := args.Input
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return nil, r.fail(authz.MutationSignUp, errInvalidEmail)
	}
	if err := validate.Var(in.Username, "required,max=64"); err != nil {
		return nil, r.fail(authz.MutationSignUp, errInvalidUsername)
	}
	session, err := r.svc.SignUp(ctx, datasource.SignUpInput{
		Email:    in.Email,
		Name:     in.Name,
		Password: string(in.Password),
		Username: in.Username,
	})
	if err != nil {
		return nil, r.fail(authz.MutationSignUp, err)
	}
	setSessionCookie(ctx, session.Token, session.ExpiresAt)
	return &AuthPayloadResolver{root: r, session: session}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Password, Username string }) (*AuthPayloadResolver, error) {
	if err := r.authorize(ctx, authz.MutationLogin, authz.Target{}); err != nil {
		return nil, err
	}
	session, err := r.svc.Login(ctx, args.Username, args.Password)
	if err != nil {
		return nil, r.fail(authz.MutationLogin, err)
	}
	setSessionCookie(ctx, session.Token, session.ExpiresAt)
	return &AuthPayloadResolver{root: r, session: session}, nil
}

// Logout clears the session cookie. Tokens are not revoked; a copied token
// stays valid until it expires.
func (r *Resolver) Logout(ctx context.Context) (bool, error) {
	if err := r.authorize(ctx, authz.MutationLogout, authz.Target{}); err != nil {
		return false, err
	}
	clearSessionCookie(ctx)
	return true, nil
}

func (r *Resolver) CreateAuthor(ctx context.Context, args struct{ Name string }) (*AuthorResolver, error) {
	if err := r.authorize(ctx, authz.MutationCreateAuthor, authz.Target{}); err != nil {
		return nil, err
	}
	author, err := r.svc.CreateAuthor(ctx, args.Name)
	if err != nil {
		return nil, r.fail(authz.MutationCreateAuthor, err)
	}
	return &AuthorResolver{root: r, author: *author}, nil
}

func (r *Resolver) CreateBook(ctx context.Context, args struct{ Input createBookInput }) (*BookResolver, error) {
	if err := r.authorize(ctx, authz.MutationCreateBook, authz.Target{}); err != nil {
		return nil, err
	}
	in := datasource.CreateBookInput{
		Title:   args.Input.Title,
		Cover:   args.Input.Cover,
		Genre:   args.Input.Genre,
		Summary: args.Input.Summary,
	}
	if args.Input.AuthorIDs != nil {
		ids, err := parseIDs(*args.Input.AuthorIDs)
		if err != nil {
			return nil, err
		}
		in.AuthorIDs = ids
	}
	book, err := r.svc.CreateBook(ctx, in)
	if err != nil {
		return nil, r.fail(authz.MutationCreateBook, err)
	}
	return &BookResolver{root: r, book: *book}, nil
}

func (r *Resolver) CreateReview(ctx context.Context, args struct{ Input createReviewInput }) (*ReviewResolver, error) {
	bookID, err := parseID(args.Input.BookID)
	if err != nil {
		return nil, err
	}
	reviewerID, err := parseID(args.Input.ReviewerID)
	if err != nil {
		return nil, err
	}
	if err := r.authorize(ctx, authz.MutationCreateReview, authz.Target{UserID: reviewerID}); err != nil {
		return nil, err
	}
	review, err := r.svc.CreateReview(ctx, datasource.CreateReviewInput{
		BookID:     bookID,
		ReviewerID: reviewerID,
		Rating:     int(args.Input.Rating),
		Text:       args.Input.Text,
	})
	if err != nil {
		return nil, r.fail(authz.MutationCreateReview, err)
	}
	return &ReviewResolver{root: r, review: *review}, nil
}

func (r *Resolver) UpdateReview(ctx context.Context, args struct{ Input updateReviewInput }) (*ReviewResolver, error) {
	id, err := parseID(args.Input.ID)
	if err != nil {
		return nil, err
	}
	if err := r.authorize(ctx, authz.MutationUpdateReview, authz.Target{ReviewID: id}); err != nil {
		return nil, err
	}
	review, err := r.svc.UpdateReview(ctx, datasource.UpdateReviewInput{
		ID:     id,
		Rating: int(args.Input.Rating),
		Text:   args.Input.Text,
	})
	if err != nil {
		return nil, r.fail(authz.MutationUpdateReview, err)
	}
	return &ReviewResolver{root: r, review: *review}, nil
}

func (r *Resolver) DeleteReview(ctx context.Context, args idArgs) (graphql.ID, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return "", err
	}
	if err := r.authorize(ctx, authz.MutationDeleteReview, authz.Target{ReviewID: id}); err != nil {
		return "", err
	}
	deleted, err := r.svc.DeleteReview(ctx, id)
	if err != nil {
		return "", r.fail(authz.MutationDeleteReview, err)
	}
	return toID(deleted), nil
}

func (r *Resolver) AddBooksToLibrary(ctx context.Context, args struct{ Input libraryInput }) (*UserResolver, error) {
	in, err := args.Input.parse()
	if err != nil {
		return nil, err
	}
	if err := r.authorize(ctx, authz.MutationAddBooksToLibrary, authz.Target{UserID: in.UserID}); err != nil {
		return nil, err
	}
	user, err := r.svc.AddBooksToLibrary(ctx, in)
	if err != nil {
		return nil, r.fail(authz.MutationAddBooksToLibrary, err)
	}
	return &UserResolver{root: r, user: *user}, nil
}

func (r *Resolver) RemoveBooksFromLibrary(ctx context.Context, args struct{ Input libraryInput }) (*UserResolver, error) {
	in, err := args.Input.parse()
	if err != nil {
		return nil, err
	}
	if err := r.authorize(ctx, authz.MutationRemoveBooksFromLibrary, authz.Target{UserID: in.UserID}); err != nil {
		return nil, err
	}
	user, err := r.svc.RemoveBooksFromLibrary(ctx, in)
	if err != nil {
		return nil, r.fail(authz.MutationRemoveBooksFromLibrary, err)
	}
	return &UserResolver{root: r, user: *user}, nil
}
