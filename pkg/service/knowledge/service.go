/*
 * @Description: 聊天机器人知识库
 * @Author: 安知鱼
 * @Date: 2026-03-19 11:12:05
 * @LastEditTime: 2026-04-13 14:47:31
 * @LastEditors: 安知鱼
 */
package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	"go.uber.org/zap"
)

const (
	DefaultRetrieveLimit = 3
	maxQueryTokens       = 8
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type Service interface {
	// Retrieve 按消息中的关键词和标签查找相关文章，命中越多排名越靠前
	Retrieve(ctx context.Context, message string, limit int) ([]*model.KnowledgeArticle, error)
	List(ctx context.Context) ([]*model.KnowledgeArticle, error)
	Upsert(ctx context.Context, req *model.UpsertKnowledgeRequest) (*model.KnowledgeArticle, error)
	Delete(ctx context.Context, slug string) error
	// SeedDefaults 知识库为空时写入内置文章
	SeedDefaults(ctx context.Context, articles []*model.KnowledgeArticle) error
}

type service struct {
	repo   repository.KnowledgeRepository
	logger *zap.Logger
}

func NewService(repo repository.KnowledgeRepository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// queryTokens 按空白和标点切分消息，只保留至少两个字符的词
func queryTokens(message string) []string {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utils.RuneLen(f) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
		if len(out) == maxQueryTokens {
			break
		}
	}
	return out
}

func (s *service) Retrieve(ctx context.Context, message string, limit int) ([]*model.KnowledgeArticle, error) {
	message = strings.ToLower(strings.TrimSpace(message))
	if message == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	hits := make(map[string]int)
	bySlug := make(map[string]*model.KnowledgeArticle)
	add := func(list []*model.KnowledgeArticle, weight int) {
		for _, a := range list {
			bySlug[a.Slug] = a
			hits[a.Slug] += weight
		}
	}

	for _, token := range queryTokens(message) {
		list, err := s.repo.Search(ctx, token, limit*2)
		if err != nil {
			return nil, fmt.Errorf("检索知识库失败: %w", err)
		}
		add(list, 1)
	}

	// 中文消息通常没有分隔符，再用文章标签反向匹配
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取知识库失败: %w", err)
	}
	for _, a := range all {
		for _, tag := range a.Tags {
			if utils.RuneLen(tag) >= 2 && strings.Contains(message, strings.ToLower(tag)) {
				add([]*model.KnowledgeArticle{a}, 2)
			}
		}
	}

	ranked := make([]*model.KnowledgeArticle, 0, len(bySlug))
	for _, a := range bySlug {
		ranked = append(ranked, a)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if hits[ranked[i].Slug] != hits[ranked[j].Slug] {
			return hits[ranked[i].Slug] > hits[ranked[j].Slug]
		}
		return ranked[i].Slug < ranked[j].Slug
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *service) List(ctx context.Context) ([]*model.KnowledgeArticle, error) {
	return s.repo.List(ctx)
}

func (s *service) Upsert(ctx context.Context, req *model.UpsertKnowledgeRequest) (*model.KnowledgeArticle, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug 只能包含小写字母、数字和连字符", constant.ErrBadRequest)
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: 标题和内容不能为空", constant.ErrBadRequest)
	}

	article := &model.KnowledgeArticle{
		Slug:    slug,
		Title:   title,
		Content: content,
		Tags:    utils.NormalizeTags(req.Tags),
	}
	if err := s.repo.Upsert(ctx, article); err != nil {
		return nil, fmt.Errorf("保存知识库文章失败: %w", err)
	}
	s.logger.Info("知识库文章已保存", zap.String("slug", slug))
	return article, nil
}

func (s *service) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, strings.ToLower(strings.TrimSpace(slug))); err != nil {
		return err
	}
	s.logger.Info("知识库文章已删除", zap.String("slug", slug))
	return nil
}

func (s *service) SeedDefaults(ctx context.Context, articles []*model.KnowledgeArticle) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("读取知识库失败: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, a := range articles {
		cp := *a
		if err := s.repo.Upsert(ctx, &cp); err != nil {
			return fmt.Errorf("写入默认知识库文章 '%s' 失败: %w", a.Slug, err)
		}
	}
	s.logger.Info("已写入默认知识库文章", zap.Int("count", len(articles)))
	return nil
}
