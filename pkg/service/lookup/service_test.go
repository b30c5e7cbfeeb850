package lookup

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (Service, *testutil.DB, utility.CacheService) {
	db := testutil.NewDB(t)
	db.SeedLookups(t, configdef.AllLookups)
	cache := utility.NewCacheServiceWithFallback(nil, zap.NewNop())
	t.Cleanup(func() { utility.StopCacheService(cache) })
	return NewService(db.Repos.Lookup, cache, zap.NewNop()), db, cache
}

func TestGetLookups_SortedAndCached(t *testing.T) {
	svc, db, cache := newTestService(t)
	ctx := context.Background()

	items, err := svc.GetLookups(ctx, "bug_severity")
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, constant.BugSeverityLow, items[0].Code)
	assert.Equal(t, constant.BugSeverityCritical, items[3].Code)

	raw, err := cache.Get(ctx, cacheKeyPrefix+constant.LookupBugSeverity.String())
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	// 缓存命中时不会看到新写入的数据
	_, err = db.Repos.Lookup.CreateIfAbsent(ctx, &model.LookupMaster{
		LookupType: constant.LookupBugSeverity.String(), Code: "BLOCKER", DisplayName: "阻塞", SortOrder: 5, IsActive: true,
	})
	require.NoError(t, err)
	items, err = svc.GetLookups(ctx, constant.LookupBugSeverity.String())
	require.NoError(t, err)
	assert.Len(t, items, 4)

	require.NoError(t, svc.Warmup(ctx))
	items, err = svc.GetLookups(ctx, constant.LookupBugSeverity.String())
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestGetLookups_UnknownType(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetLookups(context.Background(), "COLORS")
	assert.ErrorIs(t, err, constant.ErrBadRequest)
}

func TestIsValidCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ok, err := svc.IsValidCode(ctx, constant.LookupBugStatus.String(), "resolved")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsValidCode(ctx, constant.LookupBugStatus.String(), "DONE")
	require.NoError(t, err)
	assert.False(t, ok)
}
