package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	service_auth "github.com/anzhiyu-c/ibbs/pkg/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	db       *testutil.DB
	tokenSvc service_auth.TokenService
	mw       *Middleware
}

func newFixture(t *testing.T, overrides map[string]string) *fixture {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	settings := db.NewSettings(t, overrides)
	tokenSvc := service_auth.NewTokenService(db.Repos.User, settings)
	return &fixture{db: db, tokenSvc: tokenSvc, mw: NewMiddleware(tokenSvc, settings, zap.NewNop())}
}

func (f *fixture) accessToken(t *testing.T, user *model.User) string {
	access, _, _, err := f.tokenSvc.GenerateSessionTokens(context.Background(), user)
	require.NoError(t, err)
	return access
}

func ok(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{"userId": userID})
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndAdminAuth(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.db.SeedUser(t, "admin@example.com", "admin", model.UserGroupAdmin)
	member := f.db.SeedUser(t, "member@example.com", "member", model.UserGroupMember)

	r := gin.New()
	r.GET("/api/me", f.mw.JWTAuth(), ok)
	r.GET("/api/admin", f.mw.JWTAuth(), f.mw.AdminAuth(), ok)
	r.GET("/api/optional", f.mw.JWTAuthOptional(), ok)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t, member))
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":`+strconv.FormatUint(uint64(member.ID), 10)+`}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t, member))
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t, admin))
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	// 可选认证：游客放行，无效令牌返回 401
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/api/optional", nil)).Code)
	req = httptest.NewRequest(http.MethodGet, "/api/optional", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestJWTAuth_RejectsRefreshToken(t *testing.T) {
	f := newFixture(t, nil)
	user := f.db.SeedUser(t, "u@example.com", "u", model.UserGroupMember)
	_, refresh, _, err := f.tokenSvc.GenerateSessionTokens(context.Background(), user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/me", f.mw.JWTAuth(), ok)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestAntiforgery(t *testing.T) {
	f := newFixture(t, nil)
	user := f.db.SeedUser(t, "u@example.com", "u", model.UserGroupMember)

	r := gin.New()
	r.Use(f.mw.Antiforgery())
	r.GET("/api/posts", ok)
	r.POST("/api/posts", ok)

	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/api/posts", nil)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, httptest.NewRequest(http.MethodPost, "/api/posts", nil)).Code)

	token, err := service_auth.NewAntiforgeryToken(f.tokenSvc)
	require.NoError(t, err)

	t.Run("cookie and header match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req.AddCookie(&http.Cookie{Name: service_auth.AntiforgeryCookieName, Value: token})
		req.Header.Set(service_auth.AntiforgeryHeaderName, token)
		assert.Equal(t, http.StatusOK, do(r, req).Code)
	})

	t.Run("header without cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req.Header.Set(service_auth.AntiforgeryHeaderName, token)
		assert.Equal(t, http.StatusForbidden, do(r, req).Code)
	})

	t.Run("tampered signature", func(t *testing.T) {
		forged := uuid.NewString() + token[strings.Index(token, "."):]
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req.AddCookie(&http.Cookie{Name: service_auth.AntiforgeryCookieName, Value: forged})
		req.Header.Set(service_auth.AntiforgeryHeaderName, forged)
		assert.Equal(t, http.StatusForbidden, do(r, req).Code)
	})

	t.Run("bearer requests are exempt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer "+f.accessToken(t, user))
		assert.Equal(t, http.StatusOK, do(r, req).Code)
	})
}

func TestAntiforgery_Disabled(t *testing.T) {
	f := newFixture(t, map[string]string{constant.KeyAntiforgeryEnable.String(): "false"})

	r := gin.New()
	r.Use(f.mw.Antiforgery())
	r.POST("/api/posts", ok)
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodPost, "/api/posts", nil)).Code)
}

func TestAIRateLimit_PerClientIP(t *testing.T) {
	f := newFixture(t, map[string]string{constant.KeyAIRateLimitPerMinute.String(): "2"})

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/api/ai/rewrite", f.mw.AIRateLimit(), ok)

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/ai/rewrite", nil)
		req.RemoteAddr = remoteAddr
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, send("1.1.1.1:1000"))
	assert.Equal(t, http.StatusOK, send("1.1.1.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1:1002"))
	// 其它 IP 不受影响
	assert.Equal(t, http.StatusOK, send("2.2.2.2:1000"))
}

func TestAIRateLimit_IgnoresSpoofedForwardHeaders(t *testing.T) {
	f := newFixture(t, map[string]string{constant.KeyAIRateLimitPerMinute.String(): "2"})

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/api/chatbot/messages", f.mw.AIRateLimit(), ok)

	passed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chatbot/messages", nil)
		req.RemoteAddr = "6.6.6.6:4321"
		req.Header.Set("X-Forwarded-For", "10.1.0."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "10.2.0."+strconv.Itoa(i))
		if do(r, req).Code == http.StatusOK {
			passed++
		}
	}
	assert.Equal(t, 2, passed)
}

func TestAIRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	f := newFixture(t, map[string]string{constant.KeyAIRateLimitPerMinute.String(): "1"})

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies([]string{"10.0.0.1"}))
	r.POST("/api/ai/tags", f.mw.AIRateLimit(), ok)

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/ai/tags", nil)
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Forwarded-For", client)
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, send("7.7.7.7"))
	assert.Equal(t, http.StatusTooManyRequests, send("7.7.7.7"))
	assert.Equal(t, http.StatusOK, send("8.8.8.8"))
}

func TestAIRateLimit_FollowsSetting(t *testing.T) {
	f := newFixture(t, map[string]string{constant.KeyAIRateLimitPerMinute.String(): "1"})

	r := gin.New()
	r.POST("/api/chatbot/messages", f.mw.AIRateLimit(), ok)
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/chatbot/messages", nil)
		req.RemoteAddr = "3.3.3.3:1234"
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestCors_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Cors())
	r.POST("/api/posts", ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := do(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-XSRF-TOKEN")
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	// 非 /api 路径不加跨域头
	r.GET("/metrics", ok)
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = do(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
