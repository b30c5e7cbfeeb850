/*
 * @Description: JWT 认证与管理员权限中间件
 * @Author: 安知鱼
 * @Date: 2026-03-06 16:40:12
 * @LastEditTime: 2026-04-12 15:30:48
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	service_auth "github.com/anzhiyu-c/ibbs/pkg/service/auth"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Middleware struct {
	tokenSvc   service_auth.TokenService
	settingSvc setting.SettingService
	aiLimiter  *ipRateLimiter
	logger     *zap.Logger
}

func NewMiddleware(tokenSvc service_auth.TokenService, settingSvc setting.SettingService, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokenSvc:   tokenSvc,
		settingSvc: settingSvc,
		aiLimiter:  newAILimiter(settingSvc),
		logger:     logger,
	}
}

// bearerToken 从 Authorization 头中取出 Bearer 令牌
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// JWTAuth 是一个强制性的JWT认证中间件
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("Authorization") == "" {
			response.Fail(c, http.StatusUnauthorized, "请求未携带Token，无权限访问")
			c.Abort()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Token格式不正确")
			c.Abort()
			return
		}

		claims, err := m.tokenSvc.ParseAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Debug("JWT 解析失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Fail(c, http.StatusUnauthorized, "无效或过期的Token")
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// JWTAuthOptional 是一个可选的JWT认证中间件
// 如果没有Token，允许游客访问；如果有Token但过期，返回401触发自动刷新
func (m *Middleware) JWTAuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next() // 没有Token或格式不正确，按游客处理
			return
		}

		claims, err := m.tokenSvc.ParseAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Debug("可选认证的 Token 解析失败，返回401触发自动刷新", zap.Error(err))
			response.Fail(c, http.StatusUnauthorized, "Token已过期")
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// AdminAuth 是一个管理员权限验证中间件，必须挂在 JWTAuth 之后
func (m *Middleware) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.GetClaims(c)
		if !ok {
			m.logger.Warn("上下文中没有找到认证信息", zap.String("path", c.Request.URL.Path))
			response.Fail(c, http.StatusForbidden, "权限信息获取失败")
			c.Abort()
			return
		}

		userGroupID, entityType, err := idgen.DecodePublicID(claims.UserGroupID)
		if err != nil || entityType != idgen.EntityTypeUserGroup {
			m.logger.Warn("解析用户组ID失败", zap.String("userId", claims.UserID), zap.Error(err))
			response.Fail(c, http.StatusForbidden, "权限信息无效：用户组ID无法解析")
			c.Abort()
			return
		}

		if userGroupID != model.UserGroupAdmin {
			response.Fail(c, http.StatusForbidden, "权限不足：此操作需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}
