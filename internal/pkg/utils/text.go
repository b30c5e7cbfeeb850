package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// NormalizePage 修正分页参数，page 从 1 开始
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// RuneLen 返回字符串的字符数
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TruncateRunes 按字符截断，超出时追加省略号
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// NormalizeTags 去除首尾空白、转小写并去重，保持原有顺序，空标签会被丢弃
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
