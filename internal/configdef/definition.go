/*
 * @Description: 站点设置、参考数据与知识库的初始定义
 * @Author: 安知鱼
 * @Date: 2026-03-05 11:02:18
 * @LastEditTime: 2026-04-16 17:40:53
 * @LastEditors: 安知鱼
 */
package configdef

import (
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// Definition 定义了单个配置项的所有属性。
type Definition struct {
	Key      constant.SettingKey
	Value    string
	Comment  string
	IsPublic bool
	// IsSecret 的配置项永远不会通过接口返回
	IsSecret bool
}

// AllSettings 是系统中所有配置项的"单一事实来源"
var AllSettings = []Definition{
	{Key: constant.KeySiteName, Value: "IBBS", Comment: "站点名称", IsPublic: true},
	{Key: constant.KeyPostModerationEnable, Value: "true", Comment: "发帖时是否调用 AI 审核内容 (true/false)", IsPublic: false},
	{Key: constant.KeyPostAutoTagEnable, Value: "true", Comment: "未填写标签时是否由 AI 自动生成 (true/false)", IsPublic: true},
	{Key: constant.KeyRegisterCaptchaEnable, Value: "false", Comment: "注册时是否需要图形验证码 (true/false)", IsPublic: true},
	{Key: constant.KeyAntiforgeryEnable, Value: "true", Comment: "是否校验 X-XSRF-TOKEN (true/false)", IsPublic: true},
	{Key: constant.KeyAIRateLimitPerMinute, Value: "20", Comment: "每个 IP 每分钟可调用 AI 接口的次数", IsPublic: false},
	{Key: constant.KeyJWTSecret, Value: "", Comment: "JWT 签名密钥，首次启动时自动生成", IsSecret: true},
	{Key: constant.KeyIDSeed, Value: "", Comment: "公共 ID 混淆种子，首次启动时自动生成", IsSecret: true},
}

// FindSetting 根据键查找定义
func FindSetting(key string) (Definition, bool) {
	for _, def := range AllSettings {
		if def.Key.String() == key {
			return def, true
		}
	}
	return Definition{}, false
}

// AllLookups 是 lookup_masters 表的初始数据
var AllLookups = []model.LookupMaster{
	{LookupType: constant.LookupBugSeverity.String(), Code: constant.BugSeverityLow, DisplayName: "低", SortOrder: 1, IsActive: true},
	{LookupType: constant.LookupBugSeverity.String(), Code: constant.BugSeverityMedium, DisplayName: "中", SortOrder: 2, IsActive: true},
	{LookupType: constant.LookupBugSeverity.String(), Code: constant.BugSeverityHigh, DisplayName: "高", SortOrder: 3, IsActive: true},
	{LookupType: constant.LookupBugSeverity.String(), Code: constant.BugSeverityCritical, DisplayName: "严重", SortOrder: 4, IsActive: true},

	{LookupType: constant.LookupBugStatus.String(), Code: constant.BugStatusOpen, DisplayName: "待处理", SortOrder: 1, IsActive: true},
	{LookupType: constant.LookupBugStatus.String(), Code: constant.BugStatusInProgress, DisplayName: "处理中", SortOrder: 2, IsActive: true},
	{LookupType: constant.LookupBugStatus.String(), Code: constant.BugStatusResolved, DisplayName: "已解决", SortOrder: 3, IsActive: true},
	{LookupType: constant.LookupBugStatus.String(), Code: constant.BugStatusClosed, DisplayName: "已关闭", SortOrder: 4, IsActive: true},

	{LookupType: constant.LookupChatbotSamplePrompt.String(), Code: "TOP_POSTS", DisplayName: "最近有哪些高分帖子？", SortOrder: 1, IsActive: true},
	{LookupType: constant.LookupChatbotSamplePrompt.String(), Code: "SEARCH", DisplayName: "搜索关于 Go 的帖子", SortOrder: 2, IsActive: true},
	{LookupType: constant.LookupChatbotSamplePrompt.String(), Code: "PROFILE", DisplayName: "总结一下我的发帖情况", SortOrder: 3, IsActive: true},
	{LookupType: constant.LookupChatbotSamplePrompt.String(), Code: "REWRITE", DisplayName: "把这段话改写得更正式: 明天开会别迟到", SortOrder: 4, IsActive: true},
	{LookupType: constant.LookupChatbotSamplePrompt.String(), Code: "RATING", DisplayName: "怎么给帖子评分？", SortOrder: 5, IsActive: true},
}

// DefaultKnowledgeArticles 是知识库为空时写入的文章
var DefaultKnowledgeArticles = []*model.KnowledgeArticle{
	{
		Slug:    "how-to-post",
		Title:   "如何发帖",
		Content: "登录后点击“发帖”，填写标题 (最多 200 字) 和正文 (支持 Markdown，最多 20000 字)。标签最多 5 个，不填写时系统会尝试自动生成。",
		Tags:    []string{"post", "发帖", "markdown"},
	},
	{
		Slug:    "how-rating-works",
		Title:   "评分规则",
		Content: "每位用户可以给别人的帖子点一次赞，重复评分只会刷新时间，不会重复计数。不能给自己的帖子评分，可以随时取消评分。",
		Tags:    []string{"rating", "评分", "点赞"},
	},
	{
		Slug:    "report-a-bug",
		Title:   "反馈问题",
		Content: "在页面右下角打开问题反馈，填写标题和描述，可附上截图或文本日志 (不超过 5MB)。未选择严重程度时由 AI 自动判断。",
		Tags:    []string{"bug", "反馈", "问题"},
	},
	{
		Slug:    "account-and-profile",
		Title:   "账号与个人资料",
		Content: "在个人中心可以修改昵称、头像和简介。个人主页会展示发帖数、获得的评分和给出的评分。",
		Tags:    []string{"profile", "账号", "个人资料"},
	},
}
