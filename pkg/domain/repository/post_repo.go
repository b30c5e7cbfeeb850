package repository

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// PostRepository 定义了帖子数据操作的契约
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	List(ctx context.Context, opts model.PostQueryOptions) ([]*model.Post, int64, error)
	UpdateTags(ctx context.Context, id uint, tags []string) error
	// AdjustRatingCount 增减点赞计数（不会小于 0）并返回最新值
	AdjustRatingCount(ctx context.Context, id uint, delta int) (int, error)
	TopRated(ctx context.Context, limit int) ([]*model.TopRatedPost, error)
	// ReconcileRatingCounts 用点赞表重新计算所有帖子的计数，返回被修正的帖子数
	ReconcileRatingCounts(ctx context.Context) (int64, error)
}
