/*
 * @Description: 基于 Gemini 的 AI 代理实现
 * @Author: 安知鱼
 * @Date: 2026-03-11 09:12:45
 * @LastEditTime: 2026-04-15 11:24:39
 * @LastEditors: 安知鱼
 */
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const systemPrompt = `你是 IBBS 论坛的助手。回答使用与用户相同的语言，保持简洁友好。`

// GeminiOptions 配置 GeminiClient
type GeminiOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClient 用 genai 的 GenerateContent 实现所有代理能力，
// 结构化结果通过提示模型输出 JSON 再解析得到
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewGeminiClient(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("Gemini API Key 未配置")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	logger.Info("Gemini AI 代理已就绪", zap.String("model", opts.Model))
	return &GeminiClient{client: client, model: opts.Model, timeout: opts.Timeout, logger: logger}, nil
}

func (g *GeminiClient) Name() string { return ProviderGemini }

func (g *GeminiClient) GenerateTags(ctx context.Context, title, content string) ([]string, error) {
	prompt := fmt.Sprintf(`为下面的论坛帖子生成最多 5 个简短的标签。
只输出 JSON: {"tags": ["..."]}

标题: %s
正文:
%s`, title, truncate(content, 4000))

	var out tagsResponse
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func (g *GeminiClient) Moderate(ctx context.Context, content string) (*model.ModerationResult, error) {
	prompt := fmt.Sprintf(`判断下面的用户内容是否包含辱骂、仇恨、色情、暴力、垃圾广告或违法信息。
只输出 JSON: {"flagged": true|false, "categories": ["..."], "reason": "..."}

内容:
%s`, truncate(content, 8000))

	var out model.ModerationResult
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GeminiClient) Rewrite(ctx context.Context, text, style string) (string, error) {
	prompt := fmt.Sprintf(`用 %s 的风格改写下面的文字，保留原意和语言。
只输出 JSON: {"text": "..."}

原文:
%s`, style, text)

	var out rewriteBody
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (g *GeminiClient) ClassifyBugSeverity(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf(`根据问题报告判断严重程度，只能是 LOW、MEDIUM、HIGH、CRITICAL 之一。
只输出 JSON: {"severity": "..."}

标题: %s
描述:
%s`, title, truncate(description, 4000))

	var out severityResponse
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return "", err
	}
	return out.Severity, nil
}

func (g *GeminiClient) DetectIntent(ctx context.Context, message string, skills []string) (*model.Intent, error) {
	prompt := fmt.Sprintf(`从下列技能中选出最能处理用户消息的一个: %s。
arguments 中可以给出 query、text、style 等参数。
只输出 JSON: {"skill": "...", "confidence": 0.0-1.0, "arguments": {"key": "value"}}

用户消息: %s`, strings.Join(skills, ", "), message)

	var out model.Intent
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GeminiClient) Chat(ctx context.Context, in ChatInput) (string, error) {
	contents := make([]*genai.Content, 0, len(in.History)+1)
	for _, turn := range in.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}

	message := in.Message
	if len(in.Context) > 0 {
		message = fmt.Sprintf("参考资料:\n%s\n\n问题: %s", strings.Join(in.Context, "\n---\n"), in.Message)
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	return g.generate(ctx, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
}

func (g *GeminiClient) generateJSON(ctx context.Context, prompt string, out any) error {
	text, err := g.generate(ctx, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return err
	}
	return decodeModelJSON(text, out)
}

func (g *GeminiClient) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", NewFatalError(errors.New("Gemini 没有返回候选结果"))
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", NewFatalError(errors.New("Gemini 返回了空内容"))
	}
	return sb.String(), nil
}

func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransientError(err)
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "exhausted", "503", "500", "unavailable"} {
		if strings.Contains(msg, marker) {
			return NewTransientError(err)
		}
	}
	return NewFatalError(err)
}
