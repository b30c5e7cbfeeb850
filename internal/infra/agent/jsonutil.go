package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ```json { ... } ```
	jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// 没有代码块时退化为第一个 { 到最后一个 }
	jsonObjectPattern    = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON 从模型输出中取出 JSON 对象，兼容 markdown 代码块和尾随逗号
func ExtractJSON(content string) string {
	var raw string
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = jsonObjectPattern.FindString(content)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || json.Valid([]byte(raw)) {
		return raw
	}
	// 只有原文不是合法 JSON 时才去掉尾随逗号，避免改写字符串值
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}

// decodeModelJSON 把模型文本解析到 out，解析失败属于 FatalError
func decodeModelJSON(content string, out any) error {
	raw := ExtractJSON(content)
	if raw == "" {
		return NewFatalError(fmt.Errorf("模型输出中没有 JSON: %q", truncate(content, 200)))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return NewFatalError(fmt.Errorf("解析模型 JSON 失败: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
