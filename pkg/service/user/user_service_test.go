package user

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/pkg/security"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*testutil.DB, UserService) {
	t.Helper()
	db := testutil.NewDB(t)
	cache := utility.NewCacheServiceWithFallback(nil, zap.NewNop())
	t.Cleanup(func() { utility.StopCacheService(cache) })
	return db, NewUserService(db.Repos.User, db.Repos.Post, cache, zap.NewNop())
}

func TestGetUserInfoAndUpdateProfile(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	u := db.SeedUser(t, "alice@example.com", "alice", model.UserGroupMember)

	info, err := svc.GetUserInfo(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)

	nickname, bio := " Alice ", "喜欢 Go"
	info, err = svc.UpdateProfile(ctx, u.ID, &model.UpdateProfileRequest{Nickname: &nickname, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alice", info.Nickname)
	assert.Equal(t, "喜欢 Go", info.Bio)

	empty := "  "
	_, err = svc.UpdateProfile(ctx, u.ID, &model.UpdateProfileRequest{Nickname: &empty})
	assert.ErrorIs(t, err, constant.ErrBadRequest)

	_, err = svc.GetUserInfo(ctx, 777)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	u := db.SeedUser(t, "bob@example.com", "bob", model.UserGroupMember)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "newpassword"), constant.ErrBadRequest)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "password", "123"), constant.ErrBadRequest)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "password", "newpassword"))

	stored, err := db.Repos.User.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, security.CheckPasswordHash("newpassword", stored.PasswordHash))
}

func TestGetUserProfileData(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	author := db.SeedUser(t, "author@example.com", "author", model.UserGroupMember)
	fan := db.SeedUser(t, "fan@example.com", "fan", model.UserGroupMember)
	for i := 0; i < RecentPostLimit+2; i++ {
		db.SeedPost(t, author.ID, "帖子")
	}
	latest := db.SeedPost(t, author.ID, "最新的帖子")
	require.NoError(t, db.Repos.Rating.Create(ctx, &model.PostRating{PostID: latest.ID, UserID: fan.ID}))
	publicID := idgen.MustPublicID(author.ID, idgen.EntityTypeUser)

	profile, err := svc.GetUserProfileData(ctx, publicID)
	require.NoError(t, err)
	assert.Empty(t, profile.User.Email)
	assert.EqualValues(t, RecentPostLimit+3, profile.Stats.PostCount)
	assert.EqualValues(t, 1, profile.Stats.RatingsReceived)
	assert.EqualValues(t, 0, profile.Stats.RatingsGiven)
	require.Len(t, profile.RecentPosts, RecentPostLimit)
	assert.Equal(t, "最新的帖子", profile.RecentPosts[0].Title)

	// 缓存命中时看不到新帖子，失效后重新计算
	db.SeedPost(t, author.ID, "缓存之后的帖子")
	cached, err := svc.GetUserProfileData(ctx, publicID)
	require.NoError(t, err)
	assert.Equal(t, "最新的帖子", cached.RecentPosts[0].Title)

	svc.InvalidateProfile(ctx, author.ID)
	fresh, err := svc.GetUserProfileData(ctx, publicID)
	require.NoError(t, err)
	assert.Equal(t, "缓存之后的帖子", fresh.RecentPosts[0].Title)

	_, err = svc.GetUserProfileData(ctx, idgen.MustPublicID(9999, idgen.EntityTypeUser))
	assert.ErrorIs(t, err, constant.ErrNotFound)
	_, err = svc.GetUserProfileData(ctx, "bogus")
	assert.ErrorIs(t, err, constant.ErrNotFound)
}
