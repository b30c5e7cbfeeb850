package mongo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
)

// memoryKnowledgeRepo 在没有 MongoDB 时提供同样的查询语义
type memoryKnowledgeRepo struct {
	mu       sync.RWMutex
	articles map[string]*model.KnowledgeArticle
}

// NewMemoryKnowledgeRepository 创建内存知识库并写入初始文章
func NewMemoryKnowledgeRepository(seed []*model.KnowledgeArticle) repository.KnowledgeRepository {
	r := &memoryKnowledgeRepo{articles: make(map[string]*model.KnowledgeArticle, len(seed))}
	for _, a := range seed {
		cp := *a
		if cp.UpdatedAt.IsZero() {
			cp.UpdatedAt = time.Now().UTC()
		}
		r.articles[cp.Slug] = &cp
	}
	return r
}

func (r *memoryKnowledgeRepo) Search(_ context.Context, query string, limit int) ([]*model.KnowledgeArticle, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.KnowledgeArticle, 0)
	for _, a := range r.articles {
		if matches(a, q) {
			cp := *a
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].Slug < matched[j].Slug
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matches(a *model.KnowledgeArticle, q string) bool {
	if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Content), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (r *memoryKnowledgeRepo) List(_ context.Context) ([]*model.KnowledgeArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*model.KnowledgeArticle, 0, len(r.articles))
	for _, a := range r.articles {
		cp := *a
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Slug < list[j].Slug })
	return list, nil
}

func (r *memoryKnowledgeRepo) Upsert(_ context.Context, article *model.KnowledgeArticle) error {
	article.UpdatedAt = time.Now().UTC()
	cp := *article
	r.mu.Lock()
	r.articles[article.Slug] = &cp
	r.mu.Unlock()
	return nil
}

func (r *memoryKnowledgeRepo) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[slug]; !ok {
		return constant.ErrNotFound
	}
	delete(r.articles, slug)
	return nil
}
