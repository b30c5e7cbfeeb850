package rating

import (
	"context"
	"sync"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*testutil.DB, Service, *model.User, *model.User, string) {
	t.Helper()
	db := testutil.NewDB(t)
	bus := event.NewEventBus(zap.NewNop())
	t.Cleanup(bus.Shutdown)
	owner := db.SeedUser(t, "owner@example.com", "owner", model.UserGroupMember)
	rater := db.SeedUser(t, "rater@example.com", "rater", model.UserGroupMember)
	p := db.SeedPost(t, owner.ID, "值得点赞的帖子")
	svc := NewService(db.Repos.Post, db.Repos.Rating, db.Tx, bus, zap.NewNop())
	return db, svc, owner, rater, idgen.MustPublicID(p.ID, idgen.EntityTypePost)
}

func TestUpdateRating_Upsert(t *testing.T) {
	_, svc, _, rater, postID := setup(t)
	ctx := context.Background()

	first, err := svc.UpdateRating(ctx, rater.ID, postID)
	require.NoError(t, err)
	assert.True(t, first.Rated)
	assert.True(t, first.Created)
	assert.Equal(t, 1, first.RatingCount)

	second, err := svc.UpdateRating(ctx, rater.ID, postID)
	require.NoError(t, err)
	assert.True(t, second.Rated)
	assert.False(t, second.Created)
	assert.Equal(t, 1, second.RatingCount)
}

func TestUpdateRating_Errors(t *testing.T) {
	_, svc, owner, rater, postID := setup(t)
	ctx := context.Background()

	_, err := svc.UpdateRating(ctx, owner.ID, postID)
	assert.ErrorIs(t, err, constant.ErrForbidden)

	_, err = svc.UpdateRating(ctx, rater.ID, idgen.MustPublicID(999, idgen.EntityTypePost))
	assert.ErrorIs(t, err, constant.ErrNotFound)

	_, err = svc.UpdateRating(ctx, rater.ID, "???")
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestUpdateRating_Concurrent(t *testing.T) {
	db, svc, _, _, postID := setup(t)
	ctx := context.Background()
	raters := make([]*model.User, 5)
	for i := range raters {
		raters[i] = db.SeedUser(t, string(rune('a'+i))+"@example.com", "r", model.UserGroupMember)
	}

	var wg sync.WaitGroup
	for _, u := range raters {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				_, err := svc.UpdateRating(ctx, id, postID)
				assert.NoError(t, err)
			}(u.ID)
		}
	}
	wg.Wait()

	raterList, err := svc.ListRatings(ctx, postID)
	require.NoError(t, err)
	assert.Len(t, raterList, len(raters))

	resp, err := svc.UpdateRating(ctx, raters[0].ID, postID)
	require.NoError(t, err)
	assert.Equal(t, len(raters), resp.RatingCount)
}

func TestRemoveRating(t *testing.T) {
	_, svc, _, rater, postID := setup(t)
	ctx := context.Background()

	resp, err := svc.RemoveRating(ctx, rater.ID, postID)
	require.NoError(t, err)
	assert.False(t, resp.Rated)
	assert.Equal(t, 0, resp.RatingCount)

	_, err = svc.UpdateRating(ctx, rater.ID, postID)
	require.NoError(t, err)
	resp, err = svc.RemoveRating(ctx, rater.ID, postID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RatingCount)

	list, err := svc.ListRatings(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListRatingsAndReconcile(t *testing.T) {
	db, svc, _, rater, postID := setup(t)
	ctx := context.Background()

	_, err := svc.UpdateRating(ctx, rater.ID, postID)
	require.NoError(t, err)

	raters, err := svc.ListRatings(ctx, postID)
	require.NoError(t, err)
	require.Len(t, raters, 1)
	assert.Equal(t, "rater", raters[0].Nickname)
	assert.Equal(t, idgen.MustPublicID(rater.ID, idgen.EntityTypeUser), raters[0].UserID)

	id, err := idgen.DecodeEntityID(postID, idgen.EntityTypePost)
	require.NoError(t, err)
	_, err = db.Repos.Post.AdjustRatingCount(ctx, id, 7)
	require.NoError(t, err)

	fixed, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fixed)

	p, err := db.Repos.Post.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, p.RatingCount)
}
