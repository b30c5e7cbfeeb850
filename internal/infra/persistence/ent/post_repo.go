/*
 * @Description: 帖子仓储
 * @Author: 安知鱼
 * @Date: 2026-03-06 11:02:15
 * @LastEditTime: 2026-04-09 21:18:40
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

const tablePosts = "posts"

var postColumns = []string{
	"id", "created_at", "updated_at", "owner_id", "title", "content", "content_html", "tags", "rating_count",
}

type postRepo struct {
	base
}

func NewPostRepository(ex Executor, dialectName string) repository.PostRepository {
	return &postRepo{base{ex: ex, dialect: dialectName}}
}

func (r *postRepo) Create(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.Tags == nil {
		post.Tags = model.StringList{}
	}

	ib := r.sql().Insert(tablePosts).
		Columns("created_at", "updated_at", "owner_id", "title", "content", "content_html", "tags", "rating_count").
		Values(now, now, post.OwnerID, post.Title, post.Content, post.ContentHTML, post.Tags, post.RatingCount)
	id, err := r.insert(ctx, ib)
	if err != nil {
		return fmt.Errorf("创建帖子失败: %w", err)
	}
	post.ID = id
	return nil
}

func (r *postRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()
	if post.Tags == nil {
		post.Tags = model.StringList{}
	}
	ub := r.sql().Update(tablePosts).
		Set("updated_at", post.UpdatedAt).
		Set("title", post.Title).
		Set("content", post.Content).
		Set("content_html", post.ContentHTML).
		Set("tags", post.Tags).
		Where(entsql.EQ("id", post.ID))
	res, err := r.exec(ctx, ub)
	if err != nil {
		return fmt.Errorf("更新帖子失败: %w", err)
	}
	return requireAffected(res)
}

func (r *postRepo) Delete(ctx context.Context, id uint) error {
	res, err := r.exec(ctx, r.sql().Delete(tablePosts).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("删除帖子失败: %w", err)
	}
	return requireAffected(res)
}

func (r *postRepo) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	sel := r.sql().Select(postColumns...).From(r.sql().Table(tablePosts)).Where(entsql.EQ("id", id)).Limit(1)
	post, err := scanPost(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

func (r *postRepo) List(ctx context.Context, opts model.PostQueryOptions) ([]*model.Post, int64, error) {
	// 谓词在构建 SQL 时会写入参数，COUNT 和 SELECT 各用一份
	preds := func() []*entsql.Predicate {
		var ps []*entsql.Predicate
		if opts.OwnerID != 0 {
			ps = append(ps, entsql.EQ("owner_id", opts.OwnerID))
		}
		if kw := strings.TrimSpace(opts.Keyword); kw != "" {
			ps = append(ps, entsql.Or(entsql.ContainsFold("title", kw), entsql.ContainsFold("content", kw)))
		}
		if tag := strings.ToLower(strings.TrimSpace(opts.Tag)); tag != "" {
			if needle, err := model.TagNeedle(tag); err == nil {
				ps = append(ps, entsql.Contains("tags", needle))
			}
		}
		return ps
	}

	total, err := r.count(ctx, tablePosts, preds()...)
	if err != nil {
		return nil, 0, fmt.Errorf("统计帖子数失败: %w", err)
	}
	if total == 0 {
		return []*model.Post{}, 0, nil
	}

	sel := r.sql().Select(postColumns...).From(r.sql().Table(tablePosts))
	if ps := preds(); len(ps) > 0 {
		sel.Where(entsql.And(ps...))
	}
	// 自增 ID 与发帖顺序一致，最新的在前
	sel.OrderBy(entsql.Desc("id")).Limit(opts.PageSize).Offset(offset(opts.Page, opts.PageSize))

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("查询帖子列表失败: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0, opts.PageSize)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

func (r *postRepo) UpdateTags(ctx context.Context, id uint, tags []string) error {
	ub := r.sql().Update(tablePosts).
		Set("tags", model.StringList(tags)).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id))
	res, err := r.exec(ctx, ub)
	if err != nil {
		return fmt.Errorf("更新帖子标签失败: %w", err)
	}
	return requireAffected(res)
}

func (r *postRepo) AdjustRatingCount(ctx context.Context, id uint, delta int) (int, error) {
	if delta != 0 {
		ub := r.sql().Update(tablePosts).Add("rating_count", delta).Where(entsql.EQ("id", id))
		if delta < 0 {
			ub.Where(entsql.GTE("rating_count", -delta))
		}
		if _, err := r.exec(ctx, ub); err != nil {
			return 0, fmt.Errorf("更新点赞计数失败: %w", err)
		}
	}

	sel := r.sql().Select("rating_count").From(r.sql().Table(tablePosts)).Where(entsql.EQ("id", id))
	var count int
	if err := r.queryRow(ctx, sel).Scan(&count); err != nil {
		return 0, notFound(err)
	}
	return count, nil
}

const topRatedSQL = `SELECT p.id, p.title, p.rating_count, p.created_at, p.owner_id, u.nickname AS owner_nickname
	FROM posts p LEFT JOIN users u ON u.id = p.owner_id
	ORDER BY p.rating_count DESC, p.id DESC
	LIMIT ?`

func (r *postRepo) TopRated(ctx context.Context, limit int) ([]*model.TopRatedPost, error) {
	rows, err := QueryRaw[*model.TopRatedPost](ctx, r.ex, r.dialect, topRatedSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("查询热门帖子失败: %w", err)
	}
	return rows, nil
}

const reconcileRatingSQL = `UPDATE posts SET rating_count = (
		SELECT COUNT(*) FROM post_ratings pr WHERE pr.post_id = posts.id
	) WHERE rating_count <> (
		SELECT COUNT(*) FROM post_ratings pr WHERE pr.post_id = posts.id
	)`

func (r *postRepo) ReconcileRatingCounts(ctx context.Context) (int64, error) {
	res, err := r.ex.ExecContext(ctx, reconcileRatingSQL)
	if err != nil {
		return 0, fmt.Errorf("校正点赞计数失败: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.OwnerID, &p.Title, &p.Content,
		&p.ContentHTML, &p.Tags, &p.RatingCount); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows)
	}
	return nil
}
