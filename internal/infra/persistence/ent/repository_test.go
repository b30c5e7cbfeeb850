package ent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db, dialect.SQLite)

	alice := seedUser(t, db, "alice@example.com", "Alice")
	bob := seedUser(t, db, "bob@example.com", "Bob")
	first := seedPost(t, db, alice.ID, "Go 并发入门", "go", "concurrency")
	second := seedPost(t, db, bob.ID, "Rust 所有权", "rust")
	third := seedPost(t, db, alice.ID, "再谈 GO 调度器", "go")

	all, total, err := repo.List(ctx, model.PostQueryOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	byOwner, total, err := repo.List(ctx, model.PostQueryOptions{OwnerID: alice.ID, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byOwner, 2)

	byKeyword, _, err := repo.List(ctx, model.PostQueryOptions{Keyword: "go", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, byKeyword, 2)

	byTag, _, err := repo.List(ctx, model.PostQueryOptions{Tag: "RUST", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, second.ID, byTag[0].ID)
	assert.Equal(t, model.StringList{"rust"}, byTag[0].Tags)

	page2, total, err := repo.List(ctx, model.PostQueryOptions{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page2, 1)
	assert.Equal(t, first.ID, page2[0].ID)
}

func TestPostRepository_ListByTagWithHTMLCharacters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db, dialect.SQLite)

	alice := seedUser(t, db, "alice@example.com", "Alice")
	qa := seedPost(t, db, alice.ID, "常见问题", "q&a", "<go>")
	seedPost(t, db, alice.ID, "其它", "qa")

	for _, tag := range []string{"q&a", "<GO>"} {
		posts, total, err := repo.List(ctx, model.PostQueryOptions{Tag: tag, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total, tag)
		require.Len(t, posts, 1)
		assert.Equal(t, qa.ID, posts[0].ID)
		assert.Equal(t, model.StringList{"q&a", "<go>"}, posts[0].Tags)
	}
}

func TestPostRepository_UpdateDeleteAndNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db, dialect.SQLite)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	post := seedPost(t, db, owner.ID, "原标题")

	post.Title = "新标题"
	require.NoError(t, repo.Update(ctx, post))
	require.NoError(t, repo.UpdateTags(ctx, post.ID, []string{"ai"}))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "新标题", got.Title)
	assert.Equal(t, model.StringList{"ai"}, got.Tags)

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err = repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, constant.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, post.ID), constant.ErrNotFound)
}

func TestPostRepository_AdjustRatingCountNeverNegative(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db, dialect.SQLite)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	post := seedPost(t, db, owner.ID, "计数")

	n, err := repo.AdjustRatingCount(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.AdjustRatingCount(ctx, post.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = repo.AdjustRatingCount(ctx, post.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = repo.AdjustRatingCount(ctx, 9999, 1)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestRatingQueries_StatsTopRatedAndReconcile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repos := NewRepositories(db, dialect.SQLite)

	alice := seedUser(t, db, "alice@example.com", "Alice")
	bob := seedUser(t, db, "bob@example.com", "Bob")
	carol := seedUser(t, db, "carol@example.com", "Carol")
	popular := seedPost(t, db, alice.ID, "热门")
	quiet := seedPost(t, db, alice.ID, "冷门")
	unrated := seedPost(t, db, carol.ID, "新帖")

	for _, rater := range []uint{bob.ID, carol.ID} {
		require.NoError(t, repos.Rating.Create(ctx, &model.PostRating{PostID: popular.ID, UserID: rater}))
	}
	require.NoError(t, repos.Rating.Create(ctx, &model.PostRating{PostID: quiet.ID, UserID: bob.ID}))

	// 计数列尚未同步，校正任务应修正两篇帖子
	fixed, err := repos.Post.ReconcileRatingCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fixed)

	top, err := repos.Post.TopRated(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, popular.ID, top[0].ID)
	assert.Equal(t, 2, top[0].RatingCount)
	assert.Equal(t, "Alice", top[0].OwnerNickname)
	// 未被评分的帖子排在最后而不是被过滤
	assert.Equal(t, unrated.ID, top[2].ID)
	assert.Equal(t, 0, top[2].RatingCount)

	stats, err := repos.User.GetStats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{PostCount: 2, RatingsReceived: 3, RatingsGiven: 0}, *stats)

	bobStats, err := repos.User.GetStats(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bobStats.RatingsGiven)

	raters, err := repos.Rating.ListRaters(ctx, popular.ID, 10)
	require.NoError(t, err)
	require.Len(t, raters, 2)
	assert.ElementsMatch(t, []string{"Bob", "Carol"}, []string{raters[0].Nickname, raters[1].Nickname})

	existing, err := repos.Rating.Find(ctx, popular.ID, bob.ID)
	require.NoError(t, err)
	later := time.Now().Add(time.Minute)
	require.NoError(t, repos.Rating.Touch(ctx, existing.ID, later))

	removed, err := repos.Rating.Delete(ctx, popular.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repos.Rating.Delete(ctx, popular.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repos.Rating.Find(ctx, popular.ID, bob.ID)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tm := NewTransactionManager(db, dialect.SQLite)
	boom := errors.New("boom")

	err := tm.Do(ctx, func(repos repository.Repositories) error {
		u := &model.User{Email: "tx@example.com", PasswordHash: "h", UserGroupID: 2, Status: 1}
		require.NoError(t, repos.User.Create(ctx, u))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewUserRepository(db, dialect.SQLite).FindByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, constant.ErrNotFound)

	err = tm.Do(ctx, func(repos repository.Repositories) error {
		return repos.User.Create(ctx, &model.User{Email: "ok@example.com", PasswordHash: "h", UserGroupID: 2, Status: 1})
	})
	require.NoError(t, err)
	count, err := NewUserRepository(db, dialect.SQLite).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLookupAndSettingRepositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repos := NewRepositories(db, dialect.SQLite)

	created, err := repos.Lookup.CreateIfAbsent(ctx, &model.LookupMaster{LookupType: "BUG_STATUS", Code: "OPEN", DisplayName: "待处理", SortOrder: 1, IsActive: true})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repos.Lookup.CreateIfAbsent(ctx, &model.LookupMaster{LookupType: "BUG_STATUS", Code: "OPEN", DisplayName: "重复", SortOrder: 1, IsActive: true})
	require.NoError(t, err)
	assert.False(t, created)

	items, err := repos.Lookup.FindByType(ctx, "BUG_STATUS")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "待处理", items[0].DisplayName)
	assert.True(t, items[0].IsActive)

	require.NoError(t, repos.Setting.Save(ctx, &model.Setting{ConfigKey: "SITE_NAME", Value: "IBBS"}))
	require.NoError(t, repos.Setting.Save(ctx, &model.Setting{ConfigKey: "SITE_NAME", Value: "IBBS 2"}))
	require.NoError(t, repos.Setting.Update(ctx, map[string]string{"SITE_NAME": "IBBS 3"}))

	all, err := repos.Setting.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "IBBS 3", all[0].Value)
}
