package chatbot

import (
	"strings"
	"unicode/utf8"
)

// 技能名称
const (
	SkillGeneralChat    = "general_chat"
	SkillSearchPosts    = "search_posts"
	SkillTopPosts       = "top_posts"
	SkillProfileSummary = "profile_summary"
	SkillRewriteText    = "rewrite_text"
	SkillReportBug      = "report_bug"
	SkillHelp           = "help"
)

type keywordRule struct {
	skill    string
	keywords []string
}

// 按顺序匹配，越具体的规则越靠前
var keywordRules = []keywordRule{
	{SkillRewriteText, []string{"改写", "润色", "重写", "rewrite", "rephrase", "paraphrase"}},
	{SkillReportBug, []string{"报错", "崩溃", "故障", "出错", "bug", "反馈问题", "crash"}},
	{SkillTopPosts, []string{"热门", "高分", "排行", "最受欢迎", "top rated", "top posts", "popular"}},
	{SkillProfileSummary, []string{"我的发帖", "我的统计", "我的资料", "总结一下我", "my profile", "my stats", "my posts"}},
	{SkillSearchPosts, []string{"搜索", "查找", "找一下", "search", "find posts", "look for"}},
	{SkillHelp, []string{"帮助", "你能做什么", "怎么用你", "help", "what can you do"}},
}

// routeByKeyword 返回第一个命中关键词的技能，没有命中时返回空字符串
func routeByKeyword(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.skill
			}
		}
	}
	return ""
}

// 搜索时要从消息中去掉的引导词
var searchNoise = []string{
	"帮我", "请", "搜索一下", "搜索", "查找", "找一下", "关于", "相关的", "的帖子", "帖子",
	"search for", "search", "find posts about", "find posts", "look for", "posts about", "posts",
}

// extractSearchQuery 去掉引导词后剩下的部分作为搜索关键词
func extractSearchQuery(message string) string {
	q := strings.ToLower(message)
	for _, noise := range searchNoise {
		q = strings.ReplaceAll(q, noise, " ")
	}
	q = strings.Trim(q, " \t\r\n?？!！。.,，:：\"'“”")
	return strings.Join(strings.Fields(q), " ")
}

var styleKeywords = []struct {
	style    string
	keywords []string
}{
	{"formal", []string{"正式", "formal"}},
	{"casual", []string{"随意", "口语", "轻松", "casual"}},
	{"concise", []string{"简洁", "精简", "简短", "concise", "shorter"}},
	{"friendly", []string{"友好", "亲切", "friendly"}},
	{"professional", []string{"专业", "professional"}},
}

// detectStyle 从消息中识别改写风格，识别不到时返回空字符串
func detectStyle(message string) string {
	lower := strings.ToLower(message)
	for _, item := range styleKeywords {
		for _, kw := range item.keywords {
			if strings.Contains(lower, kw) {
				return item.style
			}
		}
	}
	return ""
}

// extractRewriteText 取第一个冒号之后的内容，没有冒号时返回整条消息
func extractRewriteText(message string) string {
	if i := strings.IndexAny(message, ":："); i >= 0 {
		_, size := utf8.DecodeRuneInString(message[i:])
		if rest := strings.TrimSpace(message[i+size:]); rest != "" {
			return rest
		}
	}
	return strings.TrimSpace(message)
}

