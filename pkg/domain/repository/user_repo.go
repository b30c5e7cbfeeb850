package repository

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// UserRepository 定义了用户数据操作的契约
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error)
	Count(ctx context.Context) (int64, error)
	// GetStats 统计发帖数、收到和给出的点赞数
	GetStats(ctx context.Context, userID uint) (*model.UserStats, error)
}
