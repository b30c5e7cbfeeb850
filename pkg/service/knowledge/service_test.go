package knowledge

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/mongo"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetrieve(t *testing.T) {
	svc := NewService(mongo.NewMemoryKnowledgeRepository(configdef.DefaultKnowledgeArticles), zap.NewNop())
	ctx := context.Background()

	got, err := svc.Retrieve(ctx, "怎么给帖子评分？", 0)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "how-rating-works", got[0].Slug)

	got, err = svc.Retrieve(ctx, "How do I report a BUG", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "report-a-bug", got[0].Slug)

	got, err = svc.Retrieve(ctx, "   ", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryTokens(t *testing.T) {
	assert.Equal(t, []string{"hello", "go", "世界"}, queryTokens("Hello, Go! a 世界 hello"))
}

func TestUpsertDeleteAndSeed(t *testing.T) {
	svc := NewService(mongo.NewMemoryKnowledgeRepository(nil), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx, configdef.DefaultKnowledgeArticles))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(configdef.DefaultKnowledgeArticles))

	_, err = svc.Upsert(ctx, &model.UpsertKnowledgeRequest{Slug: "Bad Slug!", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, constant.ErrBadRequest)

	a, err := svc.Upsert(ctx, &model.UpsertKnowledgeRequest{Slug: " Faq ", Title: "常见问题", Content: "内容", Tags: []string{"FAQ", "faq"}})
	require.NoError(t, err)
	assert.Equal(t, "faq", a.Slug)
	assert.Equal(t, []string{"faq"}, a.Tags)

	// 已有文章时不再写入默认文章
	require.NoError(t, svc.SeedDefaults(ctx, configdef.DefaultKnowledgeArticles))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(configdef.DefaultKnowledgeArticles)+1)

	require.NoError(t, svc.Delete(ctx, "faq"))
	assert.ErrorIs(t, svc.Delete(ctx, "faq"), constant.ErrNotFound)
}
