/*
 * @Description: AI 能力的业务封装：标签、审核、改写、缺陷分级、意图识别与聊天
 * @Author: 安知鱼
 * @Date: 2026-03-11 15:22:09
 * @LastEditTime: 2026-04-15 16:48:51
 * @LastEditors: 安知鱼
 */
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/infra/agent"
	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"

	"go.uber.org/zap"
)

const (
	MaxTags         = 5
	MaxTagLength    = 30
	MaxRewriteRunes = 5000
	DefaultStyle    = "formal"
)

// RewriteStyles 是允许的改写风格
var RewriteStyles = []string{"formal", "casual", "concise", "friendly", "professional"}

type Service interface {
	SuggestTags(ctx context.Context, title, content string) ([]string, error)
	Moderate(ctx context.Context, content string) (*model.ModerationResult, error)
	Rewrite(ctx context.Context, text, style string) (*model.RewriteResponse, error)
	// ClassifySeverity 总是返回一个有效的 BUG_SEVERITY 编码，失败时为 MEDIUM
	ClassifySeverity(ctx context.Context, title, description string) string
	DetectIntent(ctx context.Context, message string, skills []string) (*model.Intent, error)
	Chat(ctx context.Context, in agent.ChatInput) (string, error)
}

type service struct {
	client    agent.Client
	lookupSvc lookup.Service
	logger    *zap.Logger
}

func NewService(client agent.Client, lookupSvc lookup.Service, logger *zap.Logger) Service {
	return &service{client: client, lookupSvc: lookupSvc, logger: logger}
}

// observe 记录一次代理调用的指标和日志
func (s *service) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	agentRequests.WithLabelValues(op, outcomeOf(err)).Inc()
	agentDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("provider", s.client.Name()),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		s.logger.Warn("AI 代理调用失败", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("AI 代理调用完成", fields...)
}

func (s *service) SuggestTags(ctx context.Context, title, content string) (tags []string, err error) {
	defer func(start time.Time) { s.observe("tags", start, err) }(time.Now())

	raw, err := s.client.GenerateTags(ctx, title, content)
	if err != nil {
		return nil, err
	}
	return CleanTags(raw), nil
}

// CleanTags 规范化模型给出的标签，丢弃过长的并最多保留 MaxTags 个
func CleanTags(raw []string) []string {
	out := make([]string, 0, MaxTags)
	for _, tag := range utils.NormalizeTags(raw) {
		if utils.RuneLen(tag) > MaxTagLength {
			continue
		}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

func (s *service) Moderate(ctx context.Context, content string) (res *model.ModerationResult, err error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: 内容不能为空", constant.ErrBadRequest)
	}
	defer func(start time.Time) { s.observe("moderation", start, err) }(time.Now())

	res, err = s.client.Moderate(ctx, content)
	if err != nil {
		return nil, err
	}
	if res.Categories == nil {
		res.Categories = []string{}
	}
	return res, nil
}

func (s *service) Rewrite(ctx context.Context, text, style string) (resp *model.RewriteResponse, err error) {
	text = strings.TrimSpace(text)
	if text == "" || utils.RuneLen(text) > MaxRewriteRunes {
		return nil, fmt.Errorf("%w: 文本长度需在 1 到 %d 字之间", constant.ErrBadRequest, MaxRewriteRunes)
	}
	style, err = NormalizeStyle(style)
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { s.observe("rewrite", start, err) }(time.Now())

	out, err := s.client.Rewrite(ctx, text, style)
	if err != nil {
		return nil, err
	}
	return &model.RewriteResponse{Text: strings.TrimSpace(out), Style: style}, nil
}

// NormalizeStyle 校验改写风格，空值使用默认风格
func NormalizeStyle(style string) (string, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		return DefaultStyle, nil
	}
	for _, allowed := range RewriteStyles {
		if style == allowed {
			return style, nil
		}
	}
	return "", fmt.Errorf("%w: 不支持的改写风格 %q", constant.ErrBadRequest, style)
}

func (s *service) ClassifySeverity(ctx context.Context, title, description string) string {
	start := time.Now()
	raw, err := s.client.ClassifyBugSeverity(ctx, title, description)
	s.observe("bug-severity", start, err)
	if err != nil {
		return constant.BugSeverityMedium
	}

	code := strings.ToUpper(strings.TrimSpace(raw))
	ok, err := s.lookupSvc.IsValidCode(ctx, constant.LookupBugSeverity.String(), code)
	if err != nil || !ok {
		s.logger.Info("AI 给出的严重程度无效，使用默认值", zap.String("severity", raw))
		return constant.BugSeverityMedium
	}
	return code
}

func (s *service) DetectIntent(ctx context.Context, message string, skills []string) (intent *model.Intent, err error) {
	defer func(start time.Time) { s.observe("intent", start, err) }(time.Now())

	intent, err = s.client.DetectIntent(ctx, message, skills)
	if err != nil {
		return nil, err
	}
	intent.Skill = strings.ToLower(strings.TrimSpace(intent.Skill))
	if intent.Arguments == nil {
		intent.Arguments = map[string]string{}
	}
	return intent, nil
}

func (s *service) Chat(ctx context.Context, in agent.ChatInput) (reply string, err error) {
	defer func(start time.Time) { s.observe("chat", start, err) }(time.Now())

	reply, err = s.client.Chat(ctx, in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
