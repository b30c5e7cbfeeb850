/*
 * @Description: 外部 AI 代理客户端
 * @Author: 安知鱼
 * @Date: 2026-03-10 14:02:11
 * @LastEditTime: 2026-04-15 11:17:52
 * @LastEditors: 安知鱼
 */
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/config"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"

	"go.uber.org/zap"
)

const (
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// ChatInput 是一次聊天补全的输入
type ChatInput struct {
	Message string
	History []model.ChatTurn
	// Context 是从知识库检索到的参考资料，按相关度排序
	Context []string
}

// Client 定义了 AI 代理提供的全部能力。
// 所有实现返回的失败都满足 errors.Is(err, constant.ErrAgentUnavailable)，
// 未启用时返回 constant.ErrAgentDisabled。
type Client interface {
	Name() string
	GenerateTags(ctx context.Context, title, content string) ([]string, error)
	Moderate(ctx context.Context, content string) (*model.ModerationResult, error)
	Rewrite(ctx context.Context, text, style string) (string, error)
	ClassifyBugSeverity(ctx context.Context, title, description string) (string, error)
	DetectIntent(ctx context.Context, message string, skills []string) (*model.Intent, error)
	Chat(ctx context.Context, in ChatInput) (string, error)
}

// New 根据 Agent.Provider 创建客户端
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Client, error) {
	timeout := time.Duration(cfg.GetInt(config.KeyAgentTimeout)) * time.Second
	provider := strings.ToLower(strings.TrimSpace(cfg.GetString(config.KeyAgentProvider)))

	switch provider {
	case ProviderHTTP:
		return NewHTTPClient(HTTPOptions{
			BaseURL: cfg.GetString(config.KeyAgentBaseURL),
			APIKey:  cfg.GetString(config.KeyAgentAPIKey),
			Timeout: timeout,
		}, logger)
	case ProviderGemini:
		return NewGeminiClient(ctx, GeminiOptions{
			APIKey:  cfg.GetString(config.KeyAgentAPIKey),
			Model:   cfg.GetString(config.KeyAgentModel),
			Timeout: timeout,
		}, logger)
	case "", ProviderNone:
		logger.Info("AI 代理未启用，相关功能将降级")
		return NewNoneClient(), nil
	default:
		return nil, fmt.Errorf("不支持的 AI 代理类型: %s", provider)
	}
}
