/*
 * @Description: MongoDB 连接（知识库）
 * @Author: 安知鱼
 * @Date: 2026-03-19 10:03:41
 * @LastEditTime: 2026-03-19 10:40:26
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongoDatabase 连接 MongoDB 并返回知识库所在的数据库。
// 未配置或不可达时返回 nil，由上层降级到内置知识库。
func NewMongoDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*mongo.Database, func()) {
	uri := cfg.GetString(config.KeyMongoURI)
	if uri == "" {
		logger.Info("MongoDB 未配置，将使用内置知识库")
		return nil, func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Warn("连接 MongoDB 失败，将使用内置知识库", zap.Error(err))
		return nil, func() {}
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Warn("MongoDB 不可达，将使用内置知识库", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return nil, func() {}
	}

	name := cfg.GetString(config.KeyMongoDatabase)
	logger.Info("成功连接到 MongoDB", zap.String("database", name))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn("断开 MongoDB 连接失败", zap.Error(err))
		}
	}
	return client.Database(name), cleanup
}
