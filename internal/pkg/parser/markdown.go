/*
 * @Description: 帖子 Markdown 渲染与 XSS 清理
 * @Author: 安知鱼
 * @Date: 2026-03-05 15:57:23
 * @LastEditTime: 2026-04-09 10:31:46
 * @LastEditors: 安知鱼
 */
package parser

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Rendered 是一次渲染的结果
type Rendered struct {
	// HTML 已经过 bluemonday 清理，可以直接输出给前端
	HTML string
	// Text 去除了全部标签，用于摘要和 AI 提示词
	Text string
}

var (
	mdParser goldmark.Markdown
	policy   *bluemonday.Policy
)

func init() {
	mdParser = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,         // 表格、删除线、任务列表、自动链接
			extension.Typographer, // 美化排版
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(), // 原始 HTML 交给 bluemonday 处理
		),
	)

	policy = bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
}

// MarkdownToHTML 将 Markdown 字符串转换为安全的 HTML 字符串
func MarkdownToHTML(mdContent string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(mdContent), &buf); err != nil {
		return "", fmt.Errorf("渲染 Markdown 失败: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Render 同时返回安全 HTML 和纯文本
func Render(mdContent string) (*Rendered, error) {
	safeHTML, err := MarkdownToHTML(mdContent)
	if err != nil {
		return nil, err
	}
	return &Rendered{HTML: safeHTML, Text: StripHTML(safeHTML)}, nil
}
