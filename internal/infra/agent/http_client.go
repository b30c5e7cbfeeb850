/*
 * @Description: 调用外部 AI 代理 HTTP 服务的客户端
 * @Author: 安知鱼
 * @Date: 2026-03-10 14:40:27
 * @LastEditTime: 2026-04-15 11:20:06
 * @LastEditors: 安知鱼
 */
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// 代理响应体上限
const maxResponseSize = 1 << 20

// HTTPOptions 配置 HTTPClient
type HTTPOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// MaxAttempts 为 0 时默认 3 次
	MaxAttempts int
	// InitialInterval 为 0 时默认 500ms
	InitialInterval time.Duration
	HTTPClient      *http.Client
}

// HTTPClient 通过 POST JSON 调用代理服务的各个端点
type HTTPClient struct {
	baseURL         string
	apiKey          string
	maxAttempts     int
	initialInterval time.Duration
	httpClient      *http.Client
	logger          *zap.Logger
}

func NewHTTPClient(opts HTTPOptions, logger *zap.Logger) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("AI 代理 BaseURL 未配置")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:         baseURL,
		apiKey:          opts.APIKey,
		maxAttempts:     opts.MaxAttempts,
		initialInterval: opts.InitialInterval,
		httpClient:      httpClient,
		logger:          logger,
	}, nil
}

func (c *HTTPClient) Name() string { return ProviderHTTP }

type tagsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

func (c *HTTPClient) GenerateTags(ctx context.Context, title, content string) ([]string, error) {
	var out tagsResponse
	if err := c.call(ctx, "tags", tagsRequest{Title: title, Content: content}, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func (c *HTTPClient) Moderate(ctx context.Context, content string) (*model.ModerationResult, error) {
	var out model.ModerationResult
	if err := c.call(ctx, "moderation", map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type rewriteBody struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

func (c *HTTPClient) Rewrite(ctx context.Context, text, style string) (string, error) {
	var out rewriteBody
	if err := c.call(ctx, "rewrite", rewriteBody{Text: text, Style: style}, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

type severityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type severityResponse struct {
	Severity string `json:"severity"`
}

func (c *HTTPClient) ClassifyBugSeverity(ctx context.Context, title, description string) (string, error) {
	var out severityResponse
	if err := c.call(ctx, "bug-severity", severityRequest{Title: title, Description: description}, &out); err != nil {
		return "", err
	}
	return out.Severity, nil
}

type intentRequest struct {
	Message string   `json:"message"`
	Skills  []string `json:"skills"`
}

func (c *HTTPClient) DetectIntent(ctx context.Context, message string, skills []string) (*model.Intent, error) {
	var out model.Intent
	if err := c.call(ctx, "intent", intentRequest{Message: message, Skills: skills}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type chatRequest struct {
	Message string           `json:"message"`
	History []model.ChatTurn `json:"history"`
	Context []string         `json:"context"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (c *HTTPClient) Chat(ctx context.Context, in ChatInput) (string, error) {
	var out chatResponse
	req := chatRequest{Message: in.Message, History: in.History, Context: in.Context}
	if err := c.call(ctx, "chat", req, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// call 对单个端点做带指数退避的重试，只有 TransientError 会被重试
func (c *HTTPClient) call(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return NewFatalError(fmt.Errorf("序列化请求失败: %w", err))
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = 10 * c.initialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		callErr := c.do(ctx, endpoint, body, out)
		if callErr == nil {
			return nil
		}
		if !IsTransient(callErr) {
			return backoff.Permanent(callErr)
		}
		c.logger.Warn("AI 代理调用失败，准备重试",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(callErr))
		return callErr
	}, policy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !IsTransient(err) && !IsFatal(err) {
			return NewTransientError(ctxErr)
		}
		return err
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return NewFatalError(fmt.Errorf("创建请求失败: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return NewFatalError(err)
		}
		return NewTransientError(fmt.Errorf("请求 AI 代理失败: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return NewTransientError(fmt.Errorf("读取 AI 代理响应失败: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return NewTransientError(fmt.Errorf("AI 代理返回 %d: %s", resp.StatusCode, truncate(string(data), 200)))
	case resp.StatusCode >= 400:
		return NewFatalError(fmt.Errorf("AI 代理返回 %d: %s", resp.StatusCode, truncate(string(data), 200)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return NewFatalError(fmt.Errorf("解析 AI 代理响应失败: %w", err))
	}
	return nil
}
