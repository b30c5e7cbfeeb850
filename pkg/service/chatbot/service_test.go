package chatbot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/mongo"
	"github.com/anzhiyu-c/ibbs/internal/infra/storage"
	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/bug_report"
	"github.com/anzhiyu-c/ibbs/pkg/service/knowledge"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"
	"github.com/anzhiyu-c/ibbs/pkg/service/user"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	db    *testutil.DB
	agent *testutil.MockAgent
	svc   Service
	user  *model.User
}

func newFixture(t *testing.T, mock *testutil.MockAgent) *fixture {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.NewDB(t)
	db.SeedLookups(t, configdef.AllLookups)
	cache := utility.NewCacheServiceWithFallback(nil, logger)
	t.Cleanup(func() { utility.StopCacheService(cache) })
	bus := event.NewEventBus(logger)
	t.Cleanup(bus.Shutdown)
	store, err := storage.NewLocalProvider(t.TempDir(), "/api/attachments")
	require.NoError(t, err)

	lookupSvc := lookup.NewService(db.Repos.Lookup, cache, logger)
	aiSvc := ai.NewService(mock, lookupSvc, logger)
	postSvc := post.NewService(db.Repos.Post, db.Repos.User, db.Tx, aiSvc, db.NewSettings(t, nil), bus, logger)
	userSvc := user.NewUserService(db.Repos.User, db.Repos.Post, cache, logger)
	bugSvc := bug_report.NewService(db.Repos.BugReport, db.Repos.User, lookupSvc, aiSvc, store, bus, logger)
	knowledgeSvc := knowledge.NewService(mongo.NewMemoryKnowledgeRepository(configdef.DefaultKnowledgeArticles), logger)

	skills := DefaultSkills(aiSvc, knowledgeSvc, postSvc, userSvc, bugSvc, lookupSvc)
	return &fixture{
		db:    db,
		agent: mock,
		svc:   NewService(aiSvc, lookupSvc, logger, skills...),
		user:  db.SeedUser(t, "chat@example.com", "小明", model.UserGroupMember),
	}
}

func ask(t *testing.T, f *fixture, userID uint, message string) *model.ChatReply {
	t.Helper()
	reply, err := f.svc.HandleMessage(context.Background(), userID, &model.ChatRequest{Message: message})
	require.NoError(t, err)
	return reply
}

func TestHandleMessage_Validation(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{})
	for _, msg := range []string{"", "   ", strings.Repeat("长", MaxMessageRunes+1)} {
		_, err := f.svc.HandleMessage(context.Background(), 0, &model.ChatRequest{Message: msg})
		assert.ErrorIs(t, err, constant.ErrBadRequest)
	}
}

func TestHandleMessage_UsesConfidentIntent(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{Intent: &model.Intent{Skill: "TOP_POSTS", Confidence: 0.92}})
	p := f.db.SeedPost(t, f.user.ID, "高分帖子")
	_, err := f.db.Repos.Post.AdjustRatingCount(context.Background(), p.ID, 2)
	require.NoError(t, err)

	reply := ask(t, f, 0, "随便聊聊")
	assert.Equal(t, SkillTopPosts, reply.Skill)
	assert.Contains(t, reply.Reply, "高分帖子")
	require.Len(t, reply.References, 1)
	assert.True(t, strings.HasPrefix(reply.References[0].URL, "/posts/"))
}

func TestHandleMessage_KeywordFallback(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{Intent: &model.Intent{Skill: SkillTopPosts, Confidence: 0.2}})
	f.db.SeedPost(t, f.user.ID, "Go 并发模式")
	f.db.SeedPost(t, f.user.ID, "Rust 入门")

	reply := ask(t, f, 0, "搜索关于 Go 的帖子")
	assert.Equal(t, SkillSearchPosts, reply.Skill)
	assert.Contains(t, reply.Reply, "Go 并发模式")
	assert.NotContains(t, reply.Reply, "Rust")
	assert.Len(t, reply.References, 1)
}

func TestHandleMessage_GeneralChatWithKnowledge(t *testing.T) {
	mock := &testutil.MockAgent{Intent: &model.Intent{Skill: "weather", Confidence: 0.99}, Reply: " 每个帖子只能点一次赞。 "}
	f := newFixture(t, mock)

	history := make([]model.ChatTurn, 0, 14)
	for i := 0; i < 14; i++ {
		history = append(history, model.ChatTurn{Role: "user", Content: fmt.Sprintf("第 %d 轮", i)})
	}
	reply, err := f.svc.HandleMessage(context.Background(), 0, &model.ChatRequest{Message: "怎么给帖子评分？", History: history})
	require.NoError(t, err)
	assert.Equal(t, SkillGeneralChat, reply.Skill)
	assert.Equal(t, "每个帖子只能点一次赞。", reply.Reply)
	require.NotEmpty(t, reply.References)
	assert.Equal(t, "/help/how-rating-works", reply.References[0].URL)

	require.Len(t, mock.LastChat.History, MaxHistoryTurns)
	assert.Equal(t, "第 4 轮", mock.LastChat.History[0].Content)
	require.NotEmpty(t, mock.LastChat.Context)
	assert.Contains(t, mock.LastChat.Context[0], "评分规则")
}

func TestHandleMessage_AgentDown(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{Err: constant.ErrAgentDisabled})

	reply := ask(t, f, 0, "怎么给帖子评分？")
	assert.Equal(t, SkillGeneralChat, reply.Skill)
	assert.Contains(t, reply.Reply, "每位用户可以给别人的帖子点一次赞")

	reply = ask(t, f, 0, "今天天气如何")
	assert.Equal(t, agentDownReply, reply.Reply)
}

func TestHandleMessage_LoginRequiredSkills(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{Severity: "HIGH"})
	f.db.SeedPost(t, f.user.ID, "我的第一篇")

	reply := ask(t, f, 0, "总结一下我的发帖情况")
	assert.Equal(t, SkillProfileSummary, reply.Skill)
	assert.Equal(t, loginHint, reply.Reply)

	reply = ask(t, f, f.user.ID, "总结一下我的发帖情况")
	assert.Equal(t, SkillProfileSummary, reply.Skill)
	assert.Contains(t, reply.Reply, "1 篇帖子")
	assert.Contains(t, reply.Reply, "我的第一篇")

	reply = ask(t, f, 0, "发帖时页面崩溃了")
	assert.Equal(t, loginHint, reply.Reply)

	reply = ask(t, f, f.user.ID, "发帖时页面崩溃了")
	assert.Equal(t, SkillReportBug, reply.Skill)
	assert.Contains(t, reply.Reply, constant.BugSeverityHigh)

	reports, total, err := f.db.Repos.BugReport.List(context.Background(), model.BugReportQueryOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "发帖时页面崩溃了", reports[0].Title)
	require.NotNil(t, reports[0].ReporterID)
	assert.Equal(t, f.user.ID, *reports[0].ReporterID)
}

func TestHandleMessage_Rewrite(t *testing.T) {
	mock := &testutil.MockAgent{Rewritten: "请准时参加明天的会议。"}
	f := newFixture(t, mock)

	reply := ask(t, f, 0, "把这段话改写得更正式: 明天开会别迟到")
	assert.Equal(t, SkillRewriteText, reply.Skill)
	assert.Equal(t, "请准时参加明天的会议。", reply.Reply)
	assert.Equal(t, "formal", mock.LastStyle)
	assert.Len(t, reply.Suggestions, len(ai.RewriteStyles)-1)
}

func TestHandleMessage_HelpAndSamplePrompts(t *testing.T) {
	f := newFixture(t, &testutil.MockAgent{})

	prompts, err := f.svc.SamplePrompts(context.Background())
	require.NoError(t, err)
	require.Len(t, prompts, 5)
	assert.Equal(t, "最近有哪些高分帖子？", prompts[0])

	reply := ask(t, f, 0, "你能做什么")
	assert.Equal(t, SkillHelp, reply.Skill)
	assert.Equal(t, prompts, reply.Suggestions)
}

func TestRouterHelpers(t *testing.T) {
	assert.Equal(t, SkillTopPosts, routeByKeyword("最近有哪些高分帖子？"))
	assert.Equal(t, SkillRewriteText, routeByKeyword("Please REWRITE this"))
	assert.Equal(t, "", routeByKeyword("你好"))
	assert.Equal(t, "go", extractSearchQuery("搜索关于 Go 的帖子"))
	assert.Equal(t, "concise", detectStyle("帮我改得简洁一点"))
	assert.Equal(t, "明天开会别迟到", extractRewriteText("改写得更正式：明天开会别迟到"))
	assert.Equal(t, "没有冒号", extractRewriteText("没有冒号"))
}
