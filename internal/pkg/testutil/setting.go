package testutil

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// JWTSecret 是测试库中写入的签名密钥
const JWTSecret = "ibbs-test-jwt-secret"

// NewSettings 写入 JWT 密钥并载入默认配置，overrides 写入内存缓存
func (d *DB) NewSettings(t *testing.T, overrides map[string]string) setting.SettingService {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, d.Repos.Setting.Save(ctx, &model.Setting{ConfigKey: constant.KeyJWTSecret.String(), Value: JWTSecret}))

	svc := setting.NewSettingService(d.Repos.Setting, zap.NewNop())
	require.NoError(t, svc.LoadAllSettings(ctx))
	if len(overrides) > 0 {
		require.NoError(t, svc.UpdateSettings(ctx, overrides))
	}
	return svc
}
