/*
 * @Description: 帖子点赞服务
 * @Author: 安知鱼
 * @Date: 2026-03-09 15:02:27
 * @LastEditTime: 2026-04-12 21:40:03
 * @LastEditors: 安知鱼
 */
package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"go.uber.org/zap"
)

// MaxRaters 是点赞用户列表的最大长度
const MaxRaters = 100

type Service interface {
	// UpdateRating 点赞：不存在时新增并计数加一，已存在时只刷新时间
	UpdateRating(ctx context.Context, userID uint, publicPostID string) (*model.RatingResponse, error)
	RemoveRating(ctx context.Context, userID uint, publicPostID string) (*model.RatingResponse, error)
	ListRatings(ctx context.Context, publicPostID string) ([]model.RaterResponse, error)
	// Reconcile 用点赞表重新计算所有帖子的计数
	Reconcile(ctx context.Context) (int64, error)
}

type service struct {
	postRepo   repository.PostRepository
	ratingRepo repository.PostRatingRepository
	txManager  repository.TransactionManager
	locker     *utility.KeyLocker
	bus        *event.EventBus
	logger     *zap.Logger
}

func NewService(
	postRepo repository.PostRepository,
	ratingRepo repository.PostRatingRepository,
	txManager repository.TransactionManager,
	bus *event.EventBus,
	logger *zap.Logger,
) Service {
	return &service{
		postRepo:   postRepo,
		ratingRepo: ratingRepo,
		txManager:  txManager,
		locker:     utility.NewKeyLocker(),
		bus:        bus,
		logger:     logger,
	}
}

func lockKey(postID, userID uint) string {
	return fmt.Sprintf("rating:%d:%d", postID, userID)
}

func (s *service) loadPost(ctx context.Context, publicPostID string) (*model.Post, error) {
	id, err := post.DecodePostID(publicPostID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.FindByID(ctx, id)
}

func (s *service) UpdateRating(ctx context.Context, userID uint, publicPostID string) (*model.RatingResponse, error) {
	p, err := s.loadPost(ctx, publicPostID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID == userID {
		return nil, fmt.Errorf("%w: 不能给自己的帖子点赞", constant.ErrForbidden)
	}

	unlock := s.locker.Lock(lockKey(p.ID, userID))
	defer unlock()

	var (
		created bool
		count   int
	)
	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Rating.Find(ctx, p.ID, userID)
		switch {
		case err == nil:
			if err := repos.Rating.Touch(ctx, existing.ID, time.Now()); err != nil {
				return err
			}
			count, err = repos.Post.AdjustRatingCount(ctx, p.ID, 0)
			return err
		case errors.Is(err, constant.ErrNotFound):
			if err := repos.Rating.Create(ctx, &model.PostRating{PostID: p.ID, UserID: userID}); err != nil {
				return err
			}
			created = true
			count, err = repos.Post.AdjustRatingCount(ctx, p.ID, 1)
			return err
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("新增点赞", zap.Uint("post_id", p.ID), zap.Uint("user_id", userID), zap.Int("rating_count", count))
		s.bus.Publish(event.RatingChanged, event.RatingEvent{PostID: p.ID, PostOwnerID: p.OwnerID, RaterID: userID, Created: true})
	}
	return &model.RatingResponse{
		PostID:      publicPostID,
		Rated:       true,
		Created:     created,
		RatingCount: count,
	}, nil
}

func (s *service) RemoveRating(ctx context.Context, userID uint, publicPostID string) (*model.RatingResponse, error) {
	p, err := s.loadPost(ctx, publicPostID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(lockKey(p.ID, userID))
	defer unlock()

	var (
		removed bool
		count   int
	)
	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		var err error
		if removed, err = repos.Rating.Delete(ctx, p.ID, userID); err != nil {
			return err
		}
		delta := 0
		if removed {
			delta = -1
		}
		count, err = repos.Post.AdjustRatingCount(ctx, p.ID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.logger.Info("取消点赞", zap.Uint("post_id", p.ID), zap.Uint("user_id", userID), zap.Int("rating_count", count))
		s.bus.Publish(event.RatingChanged, event.RatingEvent{PostID: p.ID, PostOwnerID: p.OwnerID, RaterID: userID, Removed: true})
	}
	return &model.RatingResponse{PostID: publicPostID, Rated: false, RatingCount: count}, nil
}

func (s *service) ListRatings(ctx context.Context, publicPostID string) ([]model.RaterResponse, error) {
	p, err := s.loadPost(ctx, publicPostID)
	if err != nil {
		return nil, err
	}
	rows, err := s.ratingRepo.ListRaters(ctx, p.ID, MaxRaters)
	if err != nil {
		return nil, err
	}
	out := make([]model.RaterResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.RaterResponse{
			UserID:   idgen.MustPublicID(r.UserID, idgen.EntityTypeUser),
			Nickname: r.Nickname,
			Avatar:   r.Avatar,
			RatedAt:  r.RatedAt,
		})
	}
	return out, nil
}

func (s *service) Reconcile(ctx context.Context) (int64, error) {
	fixed, err := s.postRepo.ReconcileRatingCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("校正点赞计数失败: %w", err)
	}
	if fixed > 0 {
		s.logger.Warn("已校正不一致的点赞计数", zap.Int64("posts", fixed))
	}
	return fixed, nil
}
