// Package authz is the authorization gate. Every graph operation is looked
// up in a policy table and its rule is evaluated against the caller's
// identity before the operation runs.
package authz

import (
	"context"
	"fmt"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"
	"bookgraph/internal/entity"
)

//go:generate mockgen -destination=mocks/mock_review_lookup.go -package=mocks bookgraph/internal/authz ReviewLookup

// ErrNotAuthorized is returned for every failed rule.
var ErrNotAuthorized = apperr.Forbidden("Not authorized")

// Operations and fields covered by the policy table.
const (
	QueryAuthor       = "Query.author"
	QueryAuthors      = "Query.authors"
	QueryBook         = "Query.book"
	QueryBooks        = "Query.books"
	QueryReview       = "Query.review"
	QuerySearchPeople = "Query.searchPeople"
	QuerySearchBooks  = "Query.searchBooks"
	QueryUser         = "Query.user"
	QueryViewer       = "Query.viewer"

	MutationSignUp                 = "Mutation.signUp"
	MutationLogin                  = "Mutation.login"
	MutationLogout                 = "Mutation.logout"
	MutationCreateAuthor           = "Mutation.createAuthor"
	MutationCreateBook             = "Mutation.createBook"
	MutationCreateReview           = "Mutation.createReview"
	MutationUpdateReview           = "Mutation.updateReview"
	MutationDeleteReview           = "Mutation.deleteReview"
	MutationAddBooksToLibrary      = "Mutation.addBooksToLibrary"
	MutationRemoveBooksFromLibrary = "Mutation.removeBooksFromLibrary"

	FieldUserEmail = "User.email"
)

// ReviewLookup fetches a review by id, returning nil when it does not exist.
type ReviewLookup interface {
	GetReview(ctx context.Context, id int) (*entity.Review, error)
}

// Target names the resource an operation acts on. Zero fields are unset.
type Target struct {
	UserID   int
	ReviewID int
}

// Request is one gate evaluation.
type Request struct {
	Operation string
	Identity  *auth.Identity
	Target    Target
}

// Rule decides whether a request may proceed. It returns nil to allow.
type Rule func(ctx context.Context, req Request) error

// Gate evaluates the policy table.
type Gate struct {
	rules map[string]Rule
}

// NewGate builds the gate with the application's policy.
func NewGate(reviews ReviewLookup) *Gate {
	authed := IsAuthenticated()
	self := And(authed, IsSelf())
	owner := And(authed, OwnsReview(reviews))

	return &Gate{rules: map[string]Rule{
		QueryAuthor:       Allow(),
		QueryAuthors:      Allow(),
		QueryBook:         Allow(),
		QueryBooks:        Allow(),
		QueryReview:       Allow(),
		QuerySearchPeople: Allow(),
		QuerySearchBooks:  Allow(),
		QueryUser:         Allow(),
		QueryViewer:       Allow(),

		MutationSignUp:                 Allow(),
		MutationLogin:                  Allow(),
		MutationLogout:                 authed,
		MutationCreateAuthor:           authed,
		MutationCreateBook:             authed,
		MutationCreateReview:           self,
		MutationUpdateReview:           owner,
		MutationDeleteReview:           owner,
		MutationAddBooksToLibrary:      self,
		MutationRemoveBooksFromLibrary: self,

		FieldUserEmail: self,
	}}
}

// Check evaluates the rule for req.Operation. Operations missing from the
// table are denied.
func (g *Gate) Check(ctx context.Context, req Request) error {
	rule, ok := g.rules[req.Operation]
	if !ok {
		return ErrNotAuthorized.WithCause(fmt.Errorf("no rule for %s", req.Operation))
	}
	return rule(ctx, req)
}

func Allow() Rule {
	return func(context.Context, Request) error { return nil }
}

func IsAuthenticated() Rule {
	return func(_ context.Context, req Request) error {
		if req.Identity == nil {
			return ErrNotAuthorized
		}
		return nil
	}
}

// IsSelf requires the target user to be the caller.
func IsSelf() Rule {
	return func(_ context.Context, req Request) error {
		if req.Identity == nil || req.Target.UserID != req.Identity.UserID {
			return ErrNotAuthorized
		}
		return nil
	}
}

// OwnsReview requires the target review to exist and be written by the
// caller.
func OwnsReview(reviews ReviewLookup) Rule {
	return func(ctx context.Context, req Request) error {
		if req.Identity == nil {
			return ErrNotAuthorized
		}
		review, err := reviews.GetReview(ctx, req.Target.ReviewID)
		if err != nil {
			return err
		}
		if review == nil || review.UserID != req.Identity.UserID {
			return ErrNotAuthorized
		}
		return nil
	}
}

// And passes only when every rule passes. Rules run in order and the first
// failure is returned.
func And(rules ...Rule) Rule {
	return func(ctx context.Context, req Request) error {
		for _, r := range rules {
			if err := r(ctx, req); err != nil {
				return err
			}
		}
		return nil
	}
}
