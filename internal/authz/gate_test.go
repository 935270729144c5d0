package authz_test

import (
	"context"
	"errors"
	"testing"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"
	"bookgraph/internal/authz"
	"bookgraph/internal/authz/mocks"
	"bookgraph/internal/entity"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

var reader = &auth.Identity{UserID: 1, Username: "reader"}

func TestGate_OpenOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := authz.NewGate(mocks.NewMockReviewLookup(ctrl))
	ctx := context.Background()

	for _, op := range []string{
		authz.QueryAuthor, authz.QueryBooks, authz.QuerySearchBooks, authz.QueryUser,
		authz.QueryViewer, authz.MutationSignUp, authz.MutationLogin,
	} {
		assert.NoError(t, gate.Check(ctx, authz.Request{Operation: op}), op)
	}
}

func TestGate_RequiresAuthentication(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := authz.NewGate(mocks.NewMockReviewLookup(ctrl))
	ctx := context.Background()

	for _, op := range []string{authz.MutationLogout, authz.MutationCreateAuthor, authz.MutationCreateBook} {
		t.Run(op, func(t *testing.T) {
			err := gate.Check(ctx, authz.Request{Operation: op})
			assert.True(t, errors.Is(err, apperr.ErrForbidden))

			assert.NoError(t, gate.Check(ctx, authz.Request{Operation: op, Identity: reader}))
		})
	}
}

func TestGate_Self(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := authz.NewGate(mocks.NewMockReviewLookup(ctrl))
	ctx := context.Background()

	for _, op := range []string{
		authz.MutationCreateReview, authz.MutationAddBooksToLibrary,
		authz.MutationRemoveBooksFromLibrary, authz.FieldUserEmail,
	} {
		t.Run(op, func(t *testing.T) {
			assert.NoError(t, gate.Check(ctx, authz.Request{
				Operation: op, Identity: reader, Target: authz.Target{UserID: 1},
			}))

			err := gate.Check(ctx, authz.Request{
				Operation: op, Identity: reader, Target: authz.Target{UserID: 2},
			})
			assert.Equal(t, authz.ErrNotAuthorized, err)

			err = gate.Check(ctx, authz.Request{Operation: op, Target: authz.Target{UserID: 1}})
			assert.Equal(t, authz.ErrNotAuthorized, err)
		})
	}
}

func TestGate_OwnsReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reviews := mocks.NewMockReviewLookup(ctrl)
	gate := authz.NewGate(reviews)
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		reviews.EXPECT().GetReview(ctx, 5).Return(&entity.Review{ID: 5, UserID: 1}, nil)

		err := gate.Check(ctx, authz.Request{
			Operation: authz.MutationUpdateReview, Identity: reader, Target: authz.Target{ReviewID: 5},
		})
		assert.NoError(t, err)
	})

	t.Run("someone else's review", func(t *testing.T) {
		reviews.EXPECT().GetReview(ctx, 6).Return(&entity.Review{ID: 6, UserID: 2}, nil)

		err := gate.Check(ctx, authz.Request{
			Operation: authz.MutationDeleteReview, Identity: reader, Target: authz.Target{ReviewID: 6},
		})
		assert.Equal(t, authz.ErrNotAuthorized, err)
	})

	t.Run("missing review", func(t *testing.T) {
		reviews.EXPECT().GetReview(ctx, 7).Return(nil, nil)

		err := gate.Check(ctx, authz.Request{
			Operation: authz.MutationDeleteReview, Identity: reader, Target: authz.Target{ReviewID: 7},
		})
		assert.True(t, errors.Is(err, apperr.ErrForbidden))
	})

	t.Run("lookup failure", func(t *testing.T) {
		boom := apperr.Upstream("store down", nil)
		reviews.EXPECT().GetReview(ctx, 8).Return(nil, boom)

		err := gate.Check(ctx, authz.Request{
			Operation: authz.MutationUpdateReview, Identity: reader, Target: authz.Target{ReviewID: 8},
		})
		assert.True(t, errors.Is(err, apperr.ErrUpstreamFailure))
	})

	t.Run("anonymous never reaches the lookup", func(t *testing.T) {
		err := gate.Check(ctx, authz.Request{
			Operation: authz.MutationUpdateReview, Target: authz.Target{ReviewID: 5},
		})
		assert.Equal(t, authz.ErrNotAuthorized, err)
	})
}

func TestGate_UnknownOperationDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := authz.NewGate(mocks.NewMockReviewLookup(ctrl))

	err := gate.Check(context.Background(), authz.Request{Operation: "Mutation.dropDatabase", Identity: reader})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestAnd_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(context.Context, authz.Request) error {
		calls++
		return nil
	}

	rule := authz.And(authz.IsAuthenticated(), counting)
	assert.Error(t, rule(context.Background(), authz.Request{}))
	assert.Zero(t, calls)

	assert.NoError(t, rule(context.Background(), authz.Request{Identity: reader}))
	assert.Equal(t, 1, calls)
}
