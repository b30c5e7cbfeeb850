package ai

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/infra/agent"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, client agent.Client) Service {
	db := testutil.NewDB(t)
	db.SeedLookups(t, configdef.AllLookups)
	cache := utility.NewCacheServiceWithFallback(nil, zap.NewNop())
	t.Cleanup(func() { utility.StopCacheService(cache) })
	return NewService(client, lookup.NewService(db.Repos.Lookup, cache, zap.NewNop()), zap.NewNop())
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{"Go", "go", " 并发 ", "this-tag-is-definitely-longer-than-thirty", "a", "b", "c", "d"})
	assert.Equal(t, []string{"go", "并发", "a", "b", "c"}, got)
}

func TestNormalizeStyle(t *testing.T) {
	s, err := NormalizeStyle("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle, s)

	s, err = NormalizeStyle(" Casual ")
	require.NoError(t, err)
	assert.Equal(t, "casual", s)

	_, err = NormalizeStyle("pirate")
	assert.ErrorIs(t, err, constant.ErrBadRequest)
}

func TestRewrite(t *testing.T) {
	mock := &testutil.MockAgent{Rewritten: "  请准时参加明天的会议。 "}
	svc := newTestService(t, mock)

	resp, err := svc.Rewrite(context.Background(), "明天开会别迟到", "")
	require.NoError(t, err)
	assert.Equal(t, "请准时参加明天的会议。", resp.Text)
	assert.Equal(t, "formal", resp.Style)
	assert.Equal(t, "formal", mock.LastStyle)

	_, err = svc.Rewrite(context.Background(), "   ", "formal")
	assert.ErrorIs(t, err, constant.ErrBadRequest)
	assert.Equal(t, 1, mock.CallCount("rewrite"))
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name  string
		agent *testutil.MockAgent
		want  string
	}{
		{"valid", &testutil.MockAgent{Severity: "high"}, constant.BugSeverityHigh},
		{"unknown code", &testutil.MockAgent{Severity: "URGENT"}, constant.BugSeverityMedium},
		{"agent disabled", &testutil.MockAgent{Err: constant.ErrAgentDisabled}, constant.BugSeverityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.agent)
			assert.Equal(t, tt.want, svc.ClassifySeverity(context.Background(), "崩溃", "保存时报错"))
		})
	}
}

func TestDetectIntent_Normalizes(t *testing.T) {
	svc := newTestService(t, &testutil.MockAgent{Intent: &model.Intent{Skill: " Top_Posts ", Confidence: 0.9}})
	intent, err := svc.DetectIntent(context.Background(), "热门帖子", []string{"top_posts"})
	require.NoError(t, err)
	assert.Equal(t, "top_posts", intent.Skill)
	assert.NotNil(t, intent.Arguments)
}

func TestSuggestTags_PropagatesDisabled(t *testing.T) {
	svc := newTestService(t, agent.NewNoneClient())
	_, err := svc.SuggestTags(context.Background(), "t", "c")
	assert.ErrorIs(t, err, constant.ErrAgentDisabled)
}
