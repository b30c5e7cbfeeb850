/*
 * @Description: 用户仓储
 * @Author: 安知鱼
 * @Date: 2026-03-06 09:33:20
 * @LastEditTime: 2026-04-03 15:41:07
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

const tableUsers = "users"

var userColumns = []string{
	"id", "created_at", "updated_at", "email", "password_hash", "nickname",
	"avatar", "bio", "user_group_id", "status", "last_login_at",
}

type userRepo struct {
	base
}

func NewUserRepository(ex Executor, dialectName string) repository.UserRepository {
	return &userRepo{base{ex: ex, dialect: dialectName}}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	ib := r.sql().Insert(tableUsers).
		Columns("created_at", "updated_at", "email", "password_hash", "nickname", "avatar", "bio", "user_group_id", "status").
		Values(now, now, user.Email, user.PasswordHash, user.Nickname, user.Avatar, user.Bio, user.UserGroupID, user.Status)
	id, err := r.insert(ctx, ib)
	if err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	user.ID = id
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	ub := r.sql().Update(tableUsers).
		Set("updated_at", user.UpdatedAt).
		Set("nickname", user.Nickname).
		Set("avatar", user.Avatar).
		Set("bio", user.Bio).
		Set("password_hash", user.PasswordHash).
		Set("user_group_id", user.UserGroupID).
		Set("status", user.Status).
		Set("last_login_at", nullTime(user.LastLoginAt)).
		Where(entsql.EQ("id", user.ID))
	if _, err := r.exec(ctx, ub); err != nil {
		return fmt.Errorf("更新用户失败: %w", err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.findOne(ctx, entsql.EQ("id", id))
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, entsql.EQ("email", email))
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	result := make(map[uint]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	sel := r.sql().Select(userColumns...).From(r.sql().Table(tableUsers)).Where(entsql.In("id", args...))
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("批量查询用户失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result[u.ID] = u
	}
	return result, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.count(ctx, tableUsers)
	if err != nil {
		return 0, fmt.Errorf("统计用户数失败: %w", err)
	}
	return n, nil
}

const userStatsSQL = `SELECT
	(SELECT COUNT(*) FROM posts WHERE owner_id = ?) AS post_count,
	(SELECT COUNT(*) FROM post_ratings pr JOIN posts p ON p.id = pr.post_id WHERE p.owner_id = ?) AS ratings_received,
	(SELECT COUNT(*) FROM post_ratings WHERE user_id = ?) AS ratings_given`

func (r *userRepo) GetStats(ctx context.Context, userID uint) (*model.UserStats, error) {
	rows, err := QueryRaw[model.UserStats](ctx, r.ex, r.dialect, userStatsSQL, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("统计用户数据失败: %w", err)
	}
	if len(rows) == 0 {
		return &model.UserStats{}, nil
	}
	return &rows[0], nil
}

func (r *userRepo) findOne(ctx context.Context, pred *entsql.Predicate) (*model.User, error) {
	sel := r.sql().Select(userColumns...).From(r.sql().Table(tableUsers)).Where(pred).Limit(1)
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, notFound(sql.ErrNoRows)
	}
	return scanUser(rows)
}

func scanUser(rows *sql.Rows) (*model.User, error) {
	var u model.User
	var lastLogin sql.NullTime
	if err := rows.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Email, &u.PasswordHash, &u.Nickname,
		&u.Avatar, &u.Bio, &u.UserGroupID, &u.Status, &lastLogin); err != nil {
		return nil, fmt.Errorf("扫描用户失败: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
