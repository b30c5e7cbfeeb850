package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	internal_auth "github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCaptcha 只接受 answer == "ok"
type fakeCaptcha struct {
	verified []string
}

func (f *fakeCaptcha) Generate(context.Context) (string, string, error) {
	return "cid", "data:image/png;base64,", nil
}

func (f *fakeCaptcha) Verify(_ context.Context, captchaID, answer string) error {
	f.verified = append(f.verified, captchaID)
	if answer != "ok" {
		return constant.ErrCaptchaInvalid
	}
	return nil
}

type authFixture struct {
	db      *testutil.DB
	svc     AuthService
	tokens  TokenService
	captcha *fakeCaptcha
}

func newAuthFixture(t *testing.T, overrides map[string]string) *authFixture {
	t.Helper()
	db := testutil.NewDB(t)
	settings := db.NewSettings(t, overrides)
	tokens := NewTokenService(db.Repos.User, settings)
	captcha := &fakeCaptcha{}
	return &authFixture{
		db:      db,
		svc:     NewAuthService(db.Repos.User, settings, tokens, captcha, zap.NewNop()),
		tokens:  tokens,
		captcha: captcha,
	}
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "  Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, "alice", first.Nickname)

	second, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "bob@example.com", Password: "secret1", Nickname: "Bobby"})
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)
	assert.Equal(t, "Bobby", second.Nickname)

	_, err = f.svc.Register(ctx, &model.RegisterRequest{Email: "ALICE@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, constant.ErrEmailExists)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, constant.ErrBadRequest)

	_, err = f.svc.Register(ctx, &model.RegisterRequest{Email: "a@example.com", Password: "123"})
	assert.ErrorIs(t, err, constant.ErrBadRequest)
}

func TestRegister_Captcha(t *testing.T) {
	f := newAuthFixture(t, map[string]string{constant.KeyRegisterCaptchaEnable.String(): "true"})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "a@example.com", Password: "secret1", CaptchaID: "c1", Captcha: "bad"})
	assert.ErrorIs(t, err, constant.ErrCaptchaInvalid)

	_, err = f.svc.Register(ctx, &model.RegisterRequest{Email: "a@example.com", Password: "secret1", CaptchaID: "c2", Captcha: "ok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, f.captcha.verified)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	u := f.db.SeedUser(t, "carol@example.com", "carol", model.UserGroupMember)

	_, err := f.svc.Login(ctx, "carol@example.com", "wrong")
	assert.ErrorIs(t, err, constant.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "nobody@example.com", "password")
	assert.ErrorIs(t, err, constant.ErrInvalidCredentials)

	res, err := f.svc.Login(ctx, "CAROL@example.com", "password")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Greater(t, res.ExpiresAt, time.Now().UnixMilli())
	assert.Equal(t, idgen.MustPublicID(u.ID, idgen.EntityTypeUser), res.User.ID)

	stored, err := f.db.Repos.User.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	claims, err := f.tokens.ParseAccessToken(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, internal_auth.TokenTypeAccess, claims.TokenType)

	_, err = f.tokens.ParseAccessToken(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, constant.ErrInvalidToken)
}

func TestLogin_InactiveUser(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	u := f.db.SeedUser(t, "dave@example.com", "dave", model.UserGroupMember)
	u.Status = model.UserStatusBanned
	require.NoError(t, f.db.Repos.User.Update(ctx, u))

	_, err := f.svc.Login(ctx, "dave@example.com", "password")
	assert.ErrorIs(t, err, constant.ErrUserInactive)
}

func TestRefreshToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	f.db.SeedUser(t, "erin@example.com", "erin", model.UserGroupMember)

	login, err := f.svc.Login(ctx, "erin@example.com", "password")
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	_, err = f.tokens.ParseAccessToken(ctx, refreshed.AccessToken)
	require.NoError(t, err)

	_, err = f.svc.RefreshToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, constant.ErrInvalidToken)
	_, err = f.svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, constant.ErrInvalidToken)
}

func TestSignedToken(t *testing.T) {
	f := newAuthFixture(t, nil)

	sign, err := f.tokens.GenerateSignedToken("nonce-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.tokens.VerifySignedToken("nonce-1", sign))
	assert.ErrorIs(t, f.tokens.VerifySignedToken("nonce-2", sign), constant.ErrSignatureInvalid)
	assert.ErrorIs(t, f.tokens.VerifySignedToken("nonce-1", "no-colon"), constant.ErrSignatureInvalid)

	expired, err := f.tokens.GenerateSignedToken("nonce-1", -time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, f.tokens.VerifySignedToken("nonce-1", expired), constant.ErrSignatureInvalid)
}

func TestAntiforgeryToken(t *testing.T) {
	f := newAuthFixture(t, nil)

	token, err := NewAntiforgeryToken(f.tokens)
	require.NoError(t, err)
	require.NoError(t, VerifyAntiforgeryToken(f.tokens, token))

	nonce, sign, ok := strings.Cut(token, ".")
	require.True(t, ok)
	assert.Error(t, VerifyAntiforgeryToken(f.tokens, nonce+"x."+sign))
	assert.Error(t, VerifyAntiforgeryToken(f.tokens, nonce))
}
