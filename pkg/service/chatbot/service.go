/*
 * @Description: 聊天机器人：意图识别后分发到各个技能
 * @Author: 安知鱼
 * @Date: 2026-03-20 10:05:33
 * @LastEditTime: 2026-04-17 15:12:40
 * @LastEditors: 安知鱼
 */
package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"

	"go.uber.org/zap"
)

const (
	MaxMessageRunes = 2000
	MaxHistoryTurns = 10
	// MinConfidence 低于该置信度时改用关键词路由
	MinConfidence = 0.5

	loginHint = "这个功能需要登录后才能使用，请先登录。"
)

// Request 是分发给技能的一次对话
type Request struct {
	// UserID 为 0 表示匿名用户
	UserID    uint
	Message   string
	History   []model.ChatTurn
	Arguments map[string]string
}

// Skill 是聊天机器人的一项能力
type Skill interface {
	Name() string
	RequiresUser() bool
	Handle(ctx context.Context, req *Request) (*model.ChatReply, error)
}

type Service interface {
	// HandleMessage 处理一条用户消息，userID 为 0 表示匿名
	HandleMessage(ctx context.Context, userID uint, req *model.ChatRequest) (*model.ChatReply, error)
	SamplePrompts(ctx context.Context) ([]string, error)
}

type service struct {
	aiSvc     ai.Service
	lookupSvc lookup.Service
	skills    map[string]Skill
	names     []string
	logger    *zap.Logger
}

// NewService 创建分发器，skills 按注册顺序提供给意图识别
func NewService(aiSvc ai.Service, lookupSvc lookup.Service, logger *zap.Logger, skills ...Skill) Service {
	s := &service{
		aiSvc:     aiSvc,
		lookupSvc: lookupSvc,
		skills:    make(map[string]Skill, len(skills)),
		logger:    logger,
	}
	for _, skill := range skills {
		if _, dup := s.skills[skill.Name()]; dup {
			continue
		}
		s.skills[skill.Name()] = skill
		s.names = append(s.names, skill.Name())
	}
	return s
}

func (s *service) HandleMessage(ctx context.Context, userID uint, req *model.ChatRequest) (*model.ChatReply, error) {
	message := strings.TrimSpace(req.Message)
	if n := utils.RuneLen(message); n == 0 || n > MaxMessageRunes {
		return nil, fmt.Errorf("%w: 消息长度需在 1 到 %d 字之间", constant.ErrBadRequest, MaxMessageRunes)
	}

	skillName, args := s.route(ctx, message)
	skill, ok := s.skills[skillName]
	if !ok {
		skill, ok = s.skills[SkillGeneralChat]
		if !ok {
			return nil, fmt.Errorf("未注册 %s 技能", SkillGeneralChat)
		}
		args = map[string]string{}
	}

	if skill.RequiresUser() && userID == 0 {
		return newReply(skill.Name(), loginHint), nil
	}

	reply, err := skill.Handle(ctx, &Request{
		UserID:    userID,
		Message:   message,
		History:   trimHistory(req.History),
		Arguments: args,
	})
	if err != nil {
		s.logger.Warn("聊天技能执行失败", zap.String("skill", skill.Name()), zap.Error(err))
		return nil, err
	}
	reply.Skill = skill.Name()
	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}
	if reply.References == nil {
		reply.References = []model.ChatReference{}
	}
	return reply, nil
}

// route 先问代理，置信度不足或技能未知时退回关键词路由
func (s *service) route(ctx context.Context, message string) (string, map[string]string) {
	intent, err := s.aiSvc.DetectIntent(ctx, message, s.names)
	switch {
	case err != nil:
		s.logger.Debug("意图识别失败，使用关键词路由", zap.Error(err))
	case intent.Confidence < MinConfidence:
		s.logger.Debug("意图置信度过低，使用关键词路由",
			zap.String("skill", intent.Skill), zap.Float64("confidence", intent.Confidence))
	default:
		if _, ok := s.skills[intent.Skill]; ok {
			return intent.Skill, intent.Arguments
		}
		s.logger.Debug("代理返回了未知技能", zap.String("skill", intent.Skill))
	}

	if name := routeByKeyword(message); name != "" {
		if _, ok := s.skills[name]; ok {
			return name, map[string]string{}
		}
	}
	return SkillGeneralChat, map[string]string{}
}

// trimHistory 丢弃无效的轮次并只保留最近的 MaxHistoryTurns 轮
func trimHistory(history []model.ChatTurn) []model.ChatTurn {
	out := make([]model.ChatTurn, 0, len(history))
	for _, turn := range history {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		content := strings.TrimSpace(turn.Content)
		if content == "" || (role != "user" && role != "assistant") {
			continue
		}
		out = append(out, model.ChatTurn{Role: role, Content: content})
	}
	if len(out) > MaxHistoryTurns {
		out = out[len(out)-MaxHistoryTurns:]
	}
	return out
}

func (s *service) SamplePrompts(ctx context.Context) ([]string, error) {
	return samplePrompts(ctx, s.lookupSvc)
}

func samplePrompts(ctx context.Context, lookupSvc lookup.Service) ([]string, error) {
	items, err := lookupSvc.GetLookups(ctx, constant.LookupChatbotSamplePrompt.String())
	if err != nil {
		return nil, err
	}
	prompts := make([]string, 0, len(items))
	for _, item := range items {
		prompts = append(prompts, item.DisplayName)
	}
	return prompts, nil
}

func newReply(skill, text string) *model.ChatReply {
	return &model.ChatReply{
		Skill:       skill,
		Reply:       text,
		Suggestions: []string{},
		References:  []model.ChatReference{},
	}
}
