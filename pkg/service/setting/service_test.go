package setting

import (
	"context"
	"testing"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSettingRepo struct {
	items map[string]string
}

func (f *fakeSettingRepo) FindByKey(_ context.Context, key string) (*model.Setting, error) {
	v, ok := f.items[key]
	if !ok {
		return nil, constant.ErrNotFound
	}
	return &model.Setting{ConfigKey: key, Value: v}, nil
}

func (f *fakeSettingRepo) Save(_ context.Context, s *model.Setting) error {
	f.items[s.ConfigKey] = s.Value
	return nil
}

func (f *fakeSettingRepo) FindAll(context.Context) ([]*model.Setting, error) {
	out := make([]*model.Setting, 0, len(f.items))
	for k, v := range f.items {
		out = append(out, &model.Setting{ConfigKey: k, Value: v})
	}
	return out, nil
}

func (f *fakeSettingRepo) Update(_ context.Context, m map[string]string) error {
	for k, v := range m {
		f.items[k] = v
	}
	return nil
}

func TestSettingService_LoadAndRead(t *testing.T) {
	repo := &fakeSettingRepo{items: map[string]string{
		constant.KeyJWTSecret.String():            "s3cret",
		constant.KeyAIRateLimitPerMinute.String(): "5",
	}}
	svc := NewSettingService(repo, zap.NewNop())
	require.NoError(t, svc.LoadAllSettings(context.Background()))

	assert.Equal(t, "IBBS", svc.Get(constant.KeySiteName.String()))
	assert.True(t, svc.GetBool(constant.KeyPostModerationEnable.String()))
	assert.Equal(t, 5, svc.GetInt(constant.KeyAIRateLimitPerMinute.String(), 20))
	assert.Equal(t, 7, svc.GetInt("UNKNOWN", 7))

	admin := svc.GetAdminSettings()
	assert.NotContains(t, admin, constant.KeyJWTSecret.String())
	assert.Equal(t, "5", admin[constant.KeyAIRateLimitPerMinute.String()])

	site := svc.GetSiteConfig()
	assert.Equal(t, "IBBS", site[constant.KeySiteName.String()])
	assert.Equal(t, true, site[constant.KeyAntiforgeryEnable.String()])
	assert.NotContains(t, site, constant.KeyAIRateLimitPerMinute.String())
}

func TestSettingService_Update(t *testing.T) {
	repo := &fakeSettingRepo{items: map[string]string{}}
	svc := NewSettingService(repo, zap.NewNop())
	require.NoError(t, svc.LoadAllSettings(context.Background()))
	ctx := context.Background()

	require.NoError(t, svc.UpdateSettings(ctx, map[string]string{constant.KeySiteName.String(): "论坛"}))
	assert.Equal(t, "论坛", svc.Get(constant.KeySiteName.String()))
	assert.Equal(t, "论坛", repo.items[constant.KeySiteName.String()])

	err := svc.UpdateSettings(ctx, map[string]string{constant.KeyJWTSecret.String(): "x"})
	assert.ErrorIs(t, err, constant.ErrBadRequest)

	err = svc.UpdateSettings(ctx, map[string]string{"NOPE": "x"})
	assert.ErrorIs(t, err, constant.ErrBadRequest)

	err = svc.UpdateSettings(ctx, map[string]string{constant.KeyAntiforgeryEnable.String(): "maybe"})
	assert.ErrorIs(t, err, constant.ErrBadRequest)
}
