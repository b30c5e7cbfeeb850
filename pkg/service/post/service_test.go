package post

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	db    *testutil.DB
	agent *testutil.MockAgent
	bus   *event.EventBus
	svc   Service
	owner *model.User
	other *model.User
	admin *model.User
}

func newFixture(t *testing.T, agentMock *testutil.MockAgent, settings map[string]string) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	db.SeedLookups(t, configdef.AllLookups)
	cache := utility.NewCacheServiceWithFallback(nil, zap.NewNop())
	t.Cleanup(func() { utility.StopCacheService(cache) })
	bus := event.NewEventBus(zap.NewNop())
	t.Cleanup(bus.Shutdown)

	aiSvc := ai.NewService(agentMock, lookup.NewService(db.Repos.Lookup, cache, zap.NewNop()), zap.NewNop())
	svc := NewService(db.Repos.Post, db.Repos.User, db.Tx, aiSvc, db.NewSettings(t, settings), bus, zap.NewNop())
	return &fixture{
		db:    db,
		agent: agentMock,
		bus:   bus,
		svc:   svc,
		admin: db.SeedUser(t, "admin@example.com", "admin", model.UserGroupAdmin),
		owner: db.SeedUser(t, "owner@example.com", "owner", model.UserGroupMember),
		other: db.SeedUser(t, "other@example.com", "other", model.UserGroupMember),
	}
}

func TestAddNewPost(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{}, nil)
	created := make(chan event.PostEvent, 1)
	f.bus.Subscribe(event.PostCreated, func(p interface{}) { created <- p.(event.PostEvent) })

	resp, err := f.svc.AddNewPost(context.Background(), f.owner.ID, &model.CreatePostRequest{
		Title:   "  第一篇帖子 ",
		Content: "**你好** <script>alert(1)</script>",
		Tags:    []string{"#Go", "go", " 并发 "},
	})
	require.NoError(t, err)
	assert.Equal(t, "第一篇帖子", resp.Title)
	assert.Equal(t, []string{"go", "并发"}, resp.Tags)
	assert.Equal(t, 0, resp.RatingCount)
	assert.Equal(t, "owner", resp.Owner.Nickname)
	assert.Contains(t, resp.ContentHTML, "<strong>你好</strong>")
	assert.NotContains(t, resp.ContentHTML, "<script>")
	assert.Equal(t, 1, f.agent.CallCount("moderation"))

	select {
	case ev := <-created:
		assert.True(t, ev.HasTags)
		assert.Equal(t, f.owner.ID, ev.OwnerID)
	case <-time.After(2 * time.Second):
		t.Fatal("没有收到 post:created 事件")
	}
}

func TestAddNewPost_Validation(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.CreatePostRequest
	}{
		{"empty title", model.CreatePostRequest{Title: "  ", Content: "正文"}},
		{"long title", model.CreatePostRequest{Title: strings.Repeat("标", MaxTitleRunes+1), Content: "正文"}},
		{"empty content", model.CreatePostRequest{Title: "标题", Content: ""}},
		{"long content", model.CreatePostRequest{Title: "标题", Content: strings.Repeat("a", MaxContentRunes+1)}},
		{"too many tags", model.CreatePostRequest{Title: "标题", Content: "正文", Tags: []string{"a", "b", "c", "d", "e", "f"}}},
		{"long tag", model.CreatePostRequest{Title: "标题", Content: "正文", Tags: []string{strings.Repeat("t", ai.MaxTagLength+1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddNewPost(ctx, f.owner.ID, &tt.req)
			assert.ErrorIs(t, err, constant.ErrBadRequest)
		})
	}

	_, err := f.svc.AddNewPost(ctx, 9999, &model.CreatePostRequest{Title: "标题", Content: "正文"})
	assert.ErrorIs(t, err, constant.ErrUnauthorized)

	f.owner.Status = model.UserStatusBanned
	require.NoError(t, f.db.Repos.User.Update(ctx, f.owner))
	_, err = f.svc.AddNewPost(ctx, f.owner.ID, &model.CreatePostRequest{Title: "标题", Content: "正文"})
	assert.ErrorIs(t, err, constant.ErrUserInactive)
}

func TestAddNewPost_Moderation(t *testing.T) {
	t.Run("flagged", func(t *testing.T) {
		f := newFixture(t, &testutil.MockAgent{Moderation: &model.ModerationResult{Flagged: true, Reason: "包含广告"}}, nil)
		_, err := f.svc.AddNewPost(context.Background(), f.owner.ID, &model.CreatePostRequest{Title: "买买买", Content: "加群"})
		require.ErrorIs(t, err, constant.ErrContentRejected)
		assert.Contains(t, err.Error(), "包含广告")
	})

	t.Run("agent down fails open", func(t *testing.T) {
		f := newFixture(t, &testutil.MockAgent{Err: constant.ErrAgentUnavailable}, nil)
		_, err := f.svc.AddNewPost(context.Background(), f.owner.ID, &model.CreatePostRequest{Title: "标题", Content: "正文"})
		assert.NoError(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		mock := &testutil.MockAgent{Moderation: &model.ModerationResult{Flagged: true}}
		f := newFixture(t, mock, map[string]string{constant.KeyPostModerationEnable.String(): "false"})
		_, err := f.svc.AddNewPost(context.Background(), f.owner.ID, &model.CreatePostRequest{Title: "标题", Content: "正文"})
		assert.NoError(t, err)
		assert.Zero(t, mock.CallCount("moderation"))
	})
}

func TestGetAndListPosts(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{}, nil)
	ctx := context.Background()
	first := f.db.SeedPost(t, f.owner.ID, "Go 并发入门", "go")
	f.db.SeedPost(t, f.other.ID, "Rust 所有权", "rust")
	f.db.SeedPost(t, f.owner.ID, "Go 泛型", "go")

	got, err := f.svc.GetPost(ctx, idgen.MustPublicID(first.ID, idgen.EntityTypePost))
	require.NoError(t, err)
	assert.Equal(t, "Go 并发入门", got.Title)

	_, err = f.svc.GetPost(ctx, "not-an-id")
	assert.ErrorIs(t, err, constant.ErrNotFound)

	list, err := f.svc.ListPosts(ctx, &model.ListPostsRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, 10, list.PageSize)
	require.Len(t, list.List, 3)
	assert.Equal(t, "Go 泛型", list.List[0].Title)

	list, err = f.svc.ListPosts(ctx, &model.ListPostsRequest{Tag: "go", PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.List, 1)

	list, err = f.svc.ListUserPosts(ctx, idgen.MustPublicID(f.other.ID, idgen.EntityTypeUser), 1, 10)
	require.NoError(t, err)
	require.Len(t, list.List, 1)
	assert.Equal(t, "other", list.List[0].Owner.Nickname)

	_, err = f.svc.ListUserPosts(ctx, idgen.MustPublicID(4242, idgen.EntityTypeUser), 1, 10)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestListTopRated(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{}, nil)
	ctx := context.Background()
	low := f.db.SeedPost(t, f.owner.ID, "冷门")
	high := f.db.SeedPost(t, f.owner.ID, "热门")
	_, err := f.db.Repos.Post.AdjustRatingCount(ctx, high.ID, 3)
	require.NoError(t, err)
	_, err = f.db.Repos.Post.AdjustRatingCount(ctx, low.ID, 1)
	require.NoError(t, err)

	f.db.SeedPost(t, f.owner.ID, "无人评分")

	top, err := f.svc.ListTopRated(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "热门", top[0].Title)
	assert.Equal(t, 3, top[0].RatingCount)
	assert.Equal(t, "owner", top[0].Owner.Nickname)
	assert.Equal(t, "无人评分", top[2].Title)
	assert.Equal(t, 0, top[2].RatingCount)
}

func TestUpdateAndDeletePost_Permissions(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{}, nil)
	ctx := context.Background()
	p := f.db.SeedPost(t, f.owner.ID, "原标题")
	publicID := idgen.MustPublicID(p.ID, idgen.EntityTypePost)
	req := &model.UpdatePostRequest{Title: "新标题", Content: "# 新正文", Tags: []string{"Go"}}

	_, err := f.svc.UpdatePost(ctx, f.other.ID, publicID, req)
	assert.ErrorIs(t, err, constant.ErrForbidden)

	resp, err := f.svc.UpdatePost(ctx, f.admin.ID, publicID, req)
	require.NoError(t, err)
	assert.Equal(t, "新标题", resp.Title)
	assert.Equal(t, "owner", resp.Owner.Nickname)
	assert.Contains(t, resp.ContentHTML, "<h1")

	assert.ErrorIs(t, f.svc.DeletePost(ctx, f.other.ID, publicID), constant.ErrForbidden)

	require.NoError(t, f.db.Repos.Rating.Create(ctx, &model.PostRating{PostID: p.ID, UserID: f.other.ID}))
	require.NoError(t, f.svc.DeletePost(ctx, f.owner.ID, publicID))

	_, err = f.svc.GetPost(ctx, publicID)
	assert.ErrorIs(t, err, constant.ErrNotFound)
	_, err = f.db.Repos.Rating.Find(ctx, p.ID, f.other.ID)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestApplyGeneratedTags(t *testing.T) {
	mock := &testutil.MockAgent{Tags: []string{"Go", "GO", "后端"}}
	f := newFixture(t, mock, nil)
	ctx := context.Background()

	untagged := f.db.SeedPost(t, f.owner.ID, "没有标签")
	tags, err := f.svc.ApplyGeneratedTags(ctx, untagged.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "后端"}, tags)

	stored, err := f.db.Repos.Post.FindByID(ctx, untagged.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"go", "后端"}, stored.Tags)

	tagged := f.db.SeedPost(t, f.owner.ID, "已有标签", "rust")
	tags, err = f.svc.ApplyGeneratedTags(ctx, tagged.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, tags)
	assert.Equal(t, 1, mock.CallCount("tags"))
}
