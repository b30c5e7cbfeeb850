package middleware

import (
	"net/http"
	"strconv"
	"strings"

	service_auth "github.com/anzhiyu-c/ibbs/pkg/service/auth"

	"github.com/gin-gonic/gin"
)

// corsMaxAge 预检结果在浏览器中的缓存时间
const corsMaxAge = 600

var (
	corsAllowHeaders  = strings.Join([]string{"Authorization", "Content-Type", service_auth.AntiforgeryHeaderName, "X-Requested-With"}, ", ")
	corsExposeHeaders = strings.Join([]string{"Content-Length", "Retry-After"}, ", ")
)

// Cors 只处理 /api 下的跨域请求。防伪令牌依赖 Cookie，所以回显 Origin 并允许携带凭据
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
