/*
 * @Description: 防伪令牌 (XSRF) 校验中间件
 * @Author: 安知鱼
 * @Date: 2026-03-21 10:05:17
 * @LastEditTime: 2026-04-12 15:41:03
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	service_auth "github.com/anzhiyu-c/ibbs/pkg/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func isMutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Antiforgery 要求没有 Bearer 令牌的写请求携带与 Cookie 一致且签名有效的 X-XSRF-TOKEN
func (m *Middleware) Antiforgery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMutatingMethod(c.Request.Method) || !m.settingSvc.GetBool(constant.KeyAntiforgeryEnable.String()) {
			c.Next()
			return
		}
		// Bearer 请求走 JWT 校验
		if _, ok := bearerToken(c); ok {
			c.Next()
			return
		}

		header := c.GetHeader(service_auth.AntiforgeryHeaderName)
		cookie, err := c.Cookie(service_auth.AntiforgeryCookieName)
		if header == "" || err != nil || subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
			response.Fail(c, http.StatusForbidden, "防伪令牌缺失或不匹配")
			c.Abort()
			return
		}
		if err := service_auth.VerifyAntiforgeryToken(m.tokenSvc, header); err != nil {
			m.logger.Debug("防伪令牌校验失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Fail(c, http.StatusForbidden, "防伪令牌无效或已过期")
			c.Abort()
			return
		}
		c.Next()
	}
}
