/*
 * @Description: 应用日志，基于 zap
 * @Author: 安知鱼
 * @Date: 2026-03-02 10:40:03
 * @LastEditTime: 2026-03-02 11:02:17
 * @LastEditors: 安知鱼
 */
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建应用日志器。debug 模式输出彩色控制台日志，否则输出 JSON。
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}
