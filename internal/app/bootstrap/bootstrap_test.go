package bootstrap

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/database"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBootstrapper(t *testing.T) *Bootstrapper {
	db, err := database.OpenSQLite(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBootstrapper(db, dialect.SQLite, ent.NewRepositories(db, dialect.SQLite), zap.NewNop())
}

func TestInitializeDatabase_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	t.Setenv(SettingEnvPrefix+"SITE_NAME", "My BBS")
	b := newBootstrapper(t)

	require.NoError(t, b.InitializeDatabase(ctx))
	secret, err := b.repos.Setting.FindByKey(ctx, constant.KeyJWTSecret.String())
	require.NoError(t, err)
	assert.Len(t, secret.Value, secretLength)

	siteName, err := b.repos.Setting.FindByKey(ctx, constant.KeySiteName.String())
	require.NoError(t, err)
	assert.Equal(t, "My BBS", siteName.Value)

	// 第二次执行不会重新生成密钥
	require.NoError(t, b.InitializeDatabase(ctx))
	again, err := b.repos.Setting.FindByKey(ctx, constant.KeyJWTSecret.String())
	require.NoError(t, err)
	assert.Equal(t, secret.Value, again.Value)

	all, err := b.repos.Setting.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(configdef.AllSettings))

	severities, err := b.repos.Lookup.FindByType(ctx, constant.LookupBugSeverity.String())
	require.NoError(t, err)
	assert.Len(t, severities, 4)
}

func TestInitIDEncoder(t *testing.T) {
	ctx := context.Background()
	b := newBootstrapper(t)
	require.NoError(t, b.InitializeDatabase(ctx))

	settingSvc := setting.NewSettingService(b.repos.Setting, zap.NewNop())
	require.NoError(t, settingSvc.LoadAllSettings(ctx))
	require.NoError(t, InitIDEncoder(settingSvc))

	publicID, err := idgen.GeneratePublicID(7, idgen.EntityTypePost)
	require.NoError(t, err)
	id, err := idgen.DecodeEntityID(publicID, idgen.EntityTypePost)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}
