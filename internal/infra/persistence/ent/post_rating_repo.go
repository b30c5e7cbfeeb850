/*
 * @Description: 帖子点赞仓储
 * @Author: 安知鱼
 * @Date: 2026-03-06 15:27:09
 * @LastEditTime: 2026-04-02 10:44:31
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"fmt"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

const tablePostRatings = "post_ratings"

type postRatingRepo struct {
	base
}

func NewPostRatingRepository(ex Executor, dialectName string) repository.PostRatingRepository {
	return &postRatingRepo{base{ex: ex, dialect: dialectName}}
}

func (r *postRatingRepo) Find(ctx context.Context, postID, userID uint) (*model.PostRating, error) {
	sel := r.sql().Select("id", "post_id", "user_id", "created_at", "updated_at").
		From(r.sql().Table(tablePostRatings)).
		Where(entsql.And(entsql.EQ("post_id", postID), entsql.EQ("user_id", userID))).
		Limit(1)

	var pr model.PostRating
	if err := r.queryRow(ctx, sel).Scan(&pr.ID, &pr.PostID, &pr.UserID, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &pr, nil
}

func (r *postRatingRepo) Create(ctx context.Context, rating *model.PostRating) error {
	now := time.Now()
	rating.CreatedAt, rating.UpdatedAt = now, now
	ib := r.sql().Insert(tablePostRatings).
		Columns("created_at", "updated_at", "post_id", "user_id").
		Values(now, now, rating.PostID, rating.UserID)
	id, err := r.insert(ctx, ib)
	if err != nil {
		return fmt.Errorf("创建点赞记录失败: %w", err)
	}
	rating.ID = id
	return nil
}

func (r *postRatingRepo) Touch(ctx context.Context, id uint, at time.Time) error {
	ub := r.sql().Update(tablePostRatings).Set("updated_at", at).Where(entsql.EQ("id", id))
	res, err := r.exec(ctx, ub)
	if err != nil {
		return fmt.Errorf("更新点赞时间失败: %w", err)
	}
	return requireAffected(res)
}

func (r *postRatingRepo) Delete(ctx context.Context, postID, userID uint) (bool, error) {
	db := r.sql().Delete(tablePostRatings).
		Where(entsql.And(entsql.EQ("post_id", postID), entsql.EQ("user_id", userID)))
	res, err := r.exec(ctx, db)
	if err != nil {
		return false, fmt.Errorf("删除点赞记录失败: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postRatingRepo) DeleteByPost(ctx context.Context, postID uint) error {
	if _, err := r.exec(ctx, r.sql().Delete(tablePostRatings).Where(entsql.EQ("post_id", postID))); err != nil {
		return fmt.Errorf("删除帖子的点赞记录失败: %w", err)
	}
	return nil
}

const ratersSQL = `SELECT pr.user_id, u.nickname, u.avatar, pr.updated_at AS rated_at
	FROM post_ratings pr JOIN users u ON u.id = pr.user_id
	WHERE pr.post_id = ?
	ORDER BY pr.updated_at DESC, pr.id DESC
	LIMIT ?`

func (r *postRatingRepo) ListRaters(ctx context.Context, postID uint, limit int) ([]*model.RaterRow, error) {
	rows, err := QueryRaw[*model.RaterRow](ctx, r.ex, r.dialect, ratersSQL, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询点赞用户失败: %w", err)
	}
	return rows, nil
}
