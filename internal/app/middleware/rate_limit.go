/*
 * @Description: 频率限制中间件
 * @Author: 安知鱼
 * @Date: 2026-03-08 00:00:00
 * @LastEditTime: 2026-04-09 11:12:36
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultAIRequestsPerMinute 是 AI_RATE_LIMIT_PER_MINUTE 无效时的回退值
const DefaultAIRequestsPerMinute = 20

// limiterInfo 存储限流器及其最后访问时间
type limiterInfo struct {
	limiter           *rate.Limiter
	requestsPerMinute int
	lastAccessed      time.Time
}

// ipRateLimiter 为每个IP维护一个令牌桶，每分钟请求数可以在运行时变化
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterInfo
	perMin   func() int
	// 清理过期限流器的时间间隔
	cleanupInterval time.Duration
	idleTimeout     time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

func newIPRateLimiter(perMin func() int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:        make(map[string]*limiterInfo),
		perMin:          perMin,
		cleanupInterval: 5 * time.Minute,
		idleTimeout:     10 * time.Minute,
		lastCleanup:     time.Now(),
		now:             time.Now,
	}
}

// allow 判断该IP的本次请求是否放行
func (i *ipRateLimiter) allow(ip string) bool {
	requestsPerMinute := i.perMin()
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultAIRequestsPerMinute
	}
	now := i.now()

	i.mu.Lock()
	defer i.mu.Unlock()

	if now.Sub(i.lastCleanup) > i.cleanupInterval {
		for key, info := range i.limiters {
			if now.Sub(info.lastAccessed) > i.idleTimeout {
				delete(i.limiters, key)
			}
		}
		i.lastCleanup = now
	}

	info, exists := i.limiters[ip]
	// 配置变化后按新的速率重建
	if !exists || info.requestsPerMinute != requestsPerMinute {
		info = &limiterInfo{
			limiter:           rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
			requestsPerMinute: requestsPerMinute,
		}
		i.limiters[ip] = info
	}
	info.lastAccessed = now
	return info.limiter.AllowN(now, 1)
}

// AIRateLimit 按 IP 限制 AI 与聊天机器人接口的调用频率，所有 AI 路由共用同一组令牌桶
func (m *Middleware) AIRateLimit() gin.HandlerFunc {
	return rateLimitHandler(m.aiLimiter)
}

// newAILimiter 每分钟上限读取 AI_RATE_LIMIT_PER_MINUTE
func newAILimiter(settingSvc setting.SettingService) *ipRateLimiter {
	return newIPRateLimiter(func() int {
		return settingSvc.GetInt(constant.KeyAIRateLimitPerMinute.String(), DefaultAIRequestsPerMinute)
	})
}

// rateLimitHandler 以 c.ClientIP() 作为限流键，只有受信任代理转发的 X-Forwarded-For 才会生效
func rateLimitHandler(limiter *ipRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			response.Fail(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
