package repository

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// KnowledgeRepository 是聊天机器人上下文知识库的契约
type KnowledgeRepository interface {
	Search(ctx context.Context, query string, limit int) ([]*model.KnowledgeArticle, error)
	List(ctx context.Context) ([]*model.KnowledgeArticle, error)
	Upsert(ctx context.Context, article *model.KnowledgeArticle) error
	Delete(ctx context.Context, slug string) error
}
