package datasource

import (
	"context"
	"fmt"
	"time"

	"bookgraph/internal/apperr"
	"bookgraph/internal/entity"
)

// ErrDuplicateReview is returned by CreateReview when the reviewer already
// reviewed the book.
var ErrDuplicateReview = apperr.Forbidden("Users can only submit one review per book")

var errRatingRange = apperr.InvalidArgument("Rating must be an integer from 1 and 5")

type CreateReviewInput struct {
	BookID     int
	ReviewerID int
	Rating     int
	Text       *string
}

type UpdateReviewInput struct {
	ID     int
	Rating int
	Text   *string
}

type newReview struct {
	BookID    int       `json:"bookId"`
	UserID    int       `json:"userId"`
	Rating    int       `json:"rating"`
	Text      *string   `json:"text,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type reviewPatch struct {
	Rating int     `json:"rating"`
	Text   *string `json:"text,omitempty"`
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// GetReview returns the review with id, or nil when there is none.
func (s *Service) GetReview(ctx context.Context, id int) (*entity.Review, error) {
	return getByID[entity.Review](ctx, s.client, "reviews", id)
}

// BookReviews returns one page of reviews of bookID, newest first unless p
// says otherwise.
func (s *Service) BookReviews(ctx context.Context, bookID int, p ListParams) (entity.Page[entity.Review], error) {
	return list[entity.Review](ctx, s.client, "reviews", p.store(DefaultReviewOrder).Where("bookId", bookID))
}

// UserReviews returns one page of reviews written by userID.
func (s *Service) UserReviews(ctx context.Context, userID int, p ListParams) (entity.Page[entity.Review], error) {
	return list[entity.Review](ctx, s.client, "reviews", p.store(DefaultReviewOrder).Where("userId", userID))
}

// CreateReview stores a review stamped with the current time. The
// one-review-per-book check and the insert are separate calls, so two
// concurrent submissions can both pass the check.
func (s *Service) CreateReview(ctx context.Context, in CreateReviewInput) (*entity.Review, error) {
	if !validRating(in.Rating) {
		return nil, errRatingRange
	}

	existing, err := find[entity.Review](ctx, s.client, "reviews", "bookId", in.BookID, "userId", in.ReviewerID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateReview
	}

	payload := newReview{
		BookID:    in.BookID,
		UserID:    in.ReviewerID,
		Rating:    in.Rating,
		Text:      emptyToNil(in.Text),
		CreatedAt: s.now().UTC(),
	}
	var created entity.Review
	if _, err := s.client.Post(ctx, "/reviews", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateReview patches the rating and, when given, the text. A missing
// review surfaces as the store's NotFound.
func (s *Service) UpdateReview(ctx context.Context, in UpdateReviewInput) (*entity.Review, error) {
	if !validRating(in.Rating) {
		return nil, errRatingRange
	}
	var updated entity.Review
	patch := reviewPatch{Rating: in.Rating, Text: emptyToNil(in.Text)}
	if _, err := s.client.Patch(ctx, fmt.Sprintf("/reviews/%d", in.ID), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteReview removes the review and echoes its id.
func (s *Service) DeleteReview(ctx context.Context, id int) (int, error) {
	if _, err := s.client.Delete(ctx, fmt.Sprintf("/reviews/%d", id)); err != nil {
		return 0, err
	}
	return id, nil
}
