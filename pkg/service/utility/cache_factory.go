/*
 * @Description: 智能缓存工厂，自动选择 Redis 或内存缓存
 * @Author: 安知鱼
 * @Date: 2026-03-04 16:40:00
 * @LastEditTime: 2026-04-03 21:05:12
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewCacheServiceWithFallback 创建带有自动降级功能的缓存服务，
// redisClient 为 nil 或 ping 失败时降级到内存缓存
func NewCacheServiceWithFallback(redisClient *redis.Client, logger *zap.Logger) CacheService {
	if redisClient == nil {
		logger.Info("使用内存缓存服务")
		return NewMemoryCacheService()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis 不可用，降级到内存缓存", zap.Error(err))
		return NewMemoryCacheService()
	}

	logger.Info("使用 Redis 缓存服务")
	return NewCacheService(redisClient)
}

// CacheServiceType 缓存服务类型
type CacheServiceType string

const (
	CacheTypeRedis  CacheServiceType = "redis"
	CacheTypeMemory CacheServiceType = "memory"
)

// GetCacheServiceType 获取当前使用的缓存类型
func GetCacheServiceType(svc CacheService) CacheServiceType {
	if _, ok := svc.(*redisCacheService); ok {
		return CacheTypeRedis
	}
	return CacheTypeMemory
}

// StopCacheService 释放内存缓存的后台清理协程
func StopCacheService(svc CacheService) {
	if m, ok := svc.(*memoryCacheService); ok {
		m.Stop()
	}
}
