/*
 * @Description: 聊天机器人的内置技能
 * @Author: 安知鱼
 * @Date: 2026-03-20 14:37:12
 * @LastEditTime: 2026-04-17 15:10:08
 * @LastEditors: 安知鱼
 */
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/infra/agent"
	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/bug_report"
	"github.com/anzhiyu-c/ibbs/pkg/service/knowledge"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"
	"github.com/anzhiyu-c/ibbs/pkg/service/user"
)

const (
	searchResultLimit = 5
	topPostLimit      = 5
	bugTitleRunes     = 50
	agentDownReply    = "AI 助手暂时不可用，请稍后再试。"
)

func isAgentFailure(err error) bool {
	return errors.Is(err, constant.ErrAgentDisabled) || errors.Is(err, constant.ErrAgentUnavailable)
}

func postURL(publicID string) string {
	return "/posts/" + publicID
}

// --- general_chat ---

type generalChatSkill struct {
	aiSvc        ai.Service
	knowledgeSvc knowledge.Service
}

func NewGeneralChatSkill(aiSvc ai.Service, knowledgeSvc knowledge.Service) Skill {
	return &generalChatSkill{aiSvc: aiSvc, knowledgeSvc: knowledgeSvc}
}

func (s *generalChatSkill) Name() string      { return SkillGeneralChat }
func (s *generalChatSkill) RequiresUser() bool { return false }

func (s *generalChatSkill) Handle(ctx context.Context, req *Request) (*model.ChatReply, error) {
	articles, err := s.knowledgeSvc.Retrieve(ctx, req.Message, knowledge.DefaultRetrieveLimit)
	if err != nil {
		return nil, err
	}
	contexts := make([]string, 0, len(articles))
	refs := make([]model.ChatReference, 0, len(articles))
	for _, a := range articles {
		contexts = append(contexts, a.Title+"\n"+a.Content)
		refs = append(refs, model.ChatReference{Title: a.Title, URL: "/help/" + a.Slug})
	}

	text, err := s.aiSvc.Chat(ctx, agent.ChatInput{Message: req.Message, History: req.History, Context: contexts})
	if err != nil {
		if !isAgentFailure(err) {
			return nil, err
		}
		// 代理不可用时直接给出最相关的知识库内容
		text = agentDownReply
		if len(articles) > 0 {
			text = articles[0].Content
		}
	}
	reply := newReply(SkillGeneralChat, text)
	reply.References = refs
	return reply, nil
}

// --- search_posts ---

type searchPostsSkill struct {
	postSvc post.Service
}

func NewSearchPostsSkill(postSvc post.Service) Skill {
	return &searchPostsSkill{postSvc: postSvc}
}

func (s *searchPostsSkill) Name() string      { return SkillSearchPosts }
func (s *searchPostsSkill) RequiresUser() bool { return false }

func (s *searchPostsSkill) Handle(ctx context.Context, req *Request) (*model.ChatReply, error) {
	query := strings.TrimSpace(req.Arguments["query"])
	if query == "" {
		query = extractSearchQuery(req.Message)
	}
	if query == "" {
		return newReply(SkillSearchPosts, "想搜索什么内容？例如：搜索关于 Go 的帖子"), nil
	}

	list, err := s.postSvc.ListPosts(ctx, &model.ListPostsRequest{Keyword: query, Page: 1, PageSize: searchResultLimit})
	if err != nil {
		return nil, err
	}
	if len(list.List) == 0 {
		return newReply(SkillSearchPosts, fmt.Sprintf("没有找到与“%s”相关的帖子。", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "找到 %d 篇与“%s”相关的帖子：", list.Total, query)
	reply := newReply(SkillSearchPosts, "")
	for i, p := range list.List {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p.Title)
		reply.References = append(reply.References, model.ChatReference{Title: p.Title, URL: postURL(p.ID)})
	}
	reply.Reply = b.String()
	return reply, nil
}

// --- top_posts ---

type topPostsSkill struct {
	postSvc post.Service
}

func NewTopPostsSkill(postSvc post.Service) Skill {
	return &topPostsSkill{postSvc: postSvc}
}

func (s *topPostsSkill) Name() string      { return SkillTopPosts }
func (s *topPostsSkill) RequiresUser() bool { return false }

func (s *topPostsSkill) Handle(ctx context.Context, _ *Request) (*model.ChatReply, error) {
	top, err := s.postSvc.ListTopRated(ctx, topPostLimit)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return newReply(SkillTopPosts, "论坛里还没有帖子。"), nil
	}

	var b strings.Builder
	b.WriteString("评分最高的帖子：")
	reply := newReply(SkillTopPosts, "")
	for i, p := range top {
		fmt.Fprintf(&b, "\n%d. %s (%d 个赞，作者 %s)", i+1, p.Title, p.RatingCount, p.Owner.Nickname)
		reply.References = append(reply.References, model.ChatReference{Title: p.Title, URL: postURL(p.ID)})
	}
	reply.Reply = b.String()
	return reply, nil
}

// --- profile_summary ---

type profileSummarySkill struct {
	userSvc user.UserService
}

func NewProfileSummarySkill(userSvc user.UserService) Skill {
	return &profileSummarySkill{userSvc: userSvc}
}

func (s *profileSummarySkill) Name() string      { return SkillProfileSummary }
func (s *profileSummarySkill) RequiresUser() bool { return true }

func (s *profileSummarySkill) Handle(ctx context.Context, req *Request) (*model.ChatReply, error) {
	publicID := idgen.MustPublicID(req.UserID, idgen.EntityTypeUser)
	profile, err := s.userSvc.GetUserProfileData(ctx, publicID)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s，你一共发布了 %d 篇帖子，收到 %d 个赞，给出了 %d 个赞。",
		profile.User.Nickname, profile.Stats.PostCount, profile.Stats.RatingsReceived, profile.Stats.RatingsGiven)
	reply := newReply(SkillProfileSummary, text)
	if len(profile.RecentPosts) > 0 {
		latest := profile.RecentPosts[0]
		reply.Reply += fmt.Sprintf("最近一篇是《%s》。", latest.Title)
		reply.References = append(reply.References, model.ChatReference{Title: latest.Title, URL: postURL(latest.ID)})
	}
	reply.References = append(reply.References, model.ChatReference{Title: "个人主页", URL: "/users/" + publicID})
	return reply, nil
}

// --- rewrite_text ---

type rewriteTextSkill struct {
	aiSvc ai.Service
}

func NewRewriteTextSkill(aiSvc ai.Service) Skill {
	return &rewriteTextSkill{aiSvc: aiSvc}
}

func (s *rewriteTextSkill) Name() string      { return SkillRewriteText }
func (s *rewriteTextSkill) RequiresUser() bool { return false }

func (s *rewriteTextSkill) Handle(ctx context.Context, req *Request) (*model.ChatReply, error) {
	text := strings.TrimSpace(req.Arguments["text"])
	if text == "" {
		text = extractRewriteText(req.Message)
	}
	style := strings.TrimSpace(req.Arguments["style"])
	if style == "" {
		style = detectStyle(req.Message)
	}
	if _, err := ai.NormalizeStyle(style); err != nil {
		style = ""
	}

	resp, err := s.aiSvc.Rewrite(ctx, text, style)
	if err != nil {
		if isAgentFailure(err) {
			return newReply(SkillRewriteText, agentDownReply), nil
		}
		return nil, err
	}
	reply := newReply(SkillRewriteText, resp.Text)
	for _, st := range ai.RewriteStyles {
		if st != resp.Style {
			reply.Suggestions = append(reply.Suggestions, fmt.Sprintf("改写得更%s: %s", styleLabel(st), utils.TruncateRunes(text, 20)))
		}
	}
	return reply, nil
}

func styleLabel(style string) string {
	switch style {
	case "formal":
		return "正式"
	case "casual":
		return "随意"
	case "concise":
		return "简洁"
	case "friendly":
		return "友好"
	case "professional":
		return "专业"
	}
	return style
}

// --- report_bug ---

type reportBugSkill struct {
	bugSvc bug_report.Service
}

func NewReportBugSkill(bugSvc bug_report.Service) Skill {
	return &reportBugSkill{bugSvc: bugSvc}
}

func (s *reportBugSkill) Name() string      { return SkillReportBug }
func (s *reportBugSkill) RequiresUser() bool { return true }

func (s *reportBugSkill) Handle(ctx context.Context, req *Request) (*model.ChatReply, error) {
	title := strings.TrimSpace(req.Arguments["title"])
	if title == "" {
		title = utils.TruncateRunes(req.Message, bugTitleRunes)
	}
	description := strings.TrimSpace(req.Arguments["description"])
	if description == "" {
		description = req.Message
	}

	userID := req.UserID
	resp, err := s.bugSvc.Submit(ctx, &userID, &model.SubmitBugReportRequest{
		Title:       title,
		Description: description,
		PageURL:     req.Arguments["page_url"],
		Severity:    req.Arguments["severity"],
	}, nil)
	if errors.Is(err, constant.ErrBadRequest) && req.Arguments["severity"] != "" {
		// 代理给出的严重程度无效时交给分级逻辑重新判断
		resp, err = s.bugSvc.Submit(ctx, &userID, &model.SubmitBugReportRequest{
			Title:       title,
			Description: description,
			PageURL:     req.Arguments["page_url"],
		}, nil)
	}
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("已记录你的问题反馈（编号 %s，严重程度 %s），我们会尽快处理。", resp.ID, resp.Severity)
	return newReply(SkillReportBug, text), nil
}

// --- help ---

type helpSkill struct {
	lookupSvc lookup.Service
}

func NewHelpSkill(lookupSvc lookup.Service) Skill {
	return &helpSkill{lookupSvc: lookupSvc}
}

func (s *helpSkill) Name() string      { return SkillHelp }
func (s *helpSkill) RequiresUser() bool { return false }

func (s *helpSkill) Handle(ctx context.Context, _ *Request) (*model.ChatReply, error) {
	prompts, err := samplePrompts(ctx, s.lookupSvc)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("我可以帮你搜索帖子、查看热门帖子、总结你的发帖情况、改写文字和提交问题反馈。你可以试试：")
	for _, p := range prompts {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	reply := newReply(SkillHelp, b.String())
	reply.Suggestions = prompts
	return reply, nil
}

// DefaultSkills 返回全部内置技能，general_chat 排在最前
func DefaultSkills(
	aiSvc ai.Service,
	knowledgeSvc knowledge.Service,
	postSvc post.Service,
	userSvc user.UserService,
	bugSvc bug_report.Service,
	lookupSvc lookup.Service,
) []Skill {
	return []Skill{
		NewGeneralChatSkill(aiSvc, knowledgeSvc),
		NewSearchPostsSkill(postSvc),
		NewTopPostsSkill(postSvc),
		NewProfileSummarySkill(userSvc),
		NewRewriteTextSkill(aiSvc),
		NewReportBugSkill(bugSvc),
		NewHelpSkill(lookupSvc),
	}
}
