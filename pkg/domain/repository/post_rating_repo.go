package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// PostRatingRepository 定义了点赞记录操作的契约
type PostRatingRepository interface {
	Find(ctx context.Context, postID, userID uint) (*model.PostRating, error)
	Create(ctx context.Context, rating *model.PostRating) error
	Touch(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, postID, userID uint) (bool, error)
	DeleteByPost(ctx context.Context, postID uint) error
	ListRaters(ctx context.Context, postID uint, limit int) ([]*model.RaterRow, error)
}
