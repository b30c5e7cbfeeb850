/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-04 11:30:55
 * @LastEditTime: 2026-03-04 14:22:55
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"strconv"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient 返回 Redis 客户端；未配置或连接失败时返回 nil，由上层降级到内存缓存
func NewRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	addr := cfg.GetString(config.KeyRedisAddr)
	if addr == "" {
		logger.Info("Redis 地址未配置，将使用内存缓存")
		return nil
	}

	redisDB := 0
	if raw := cfg.GetString(config.KeyRedisDB); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn("无效的 Redis.DB 值，将使用内存缓存", zap.String("value", raw), zap.Error(err))
			return nil
		}
		redisDB = n
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.GetString(config.KeyRedisPassword),
		DB:       redisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("连接 Redis 失败，将使用内存缓存", zap.String("addr", addr), zap.Int("db", redisDB), zap.Error(err))
		rdb.Close()
		return nil
	}

	logger.Info("成功连接到 Redis", zap.String("addr", addr), zap.Int("db", redisDB))
	return rdb
}
