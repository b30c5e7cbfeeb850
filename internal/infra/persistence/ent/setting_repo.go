/*
 * @Description: 站点设置仓储
 * @Author: 安知鱼
 * @Date: 2026-03-05 21:05:49
 * @LastEditTime: 2026-03-21 18:53:13
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

const tableSettings = "settings"

type settingRepo struct {
	base
}

func NewSettingRepository(ex Executor, dialectName string) repository.SettingRepository {
	return &settingRepo{base{ex: ex, dialect: dialectName}}
}

func (r *settingRepo) FindByKey(ctx context.Context, key string) (*model.Setting, error) {
	sel := r.sql().Select("id", "config_key", "value", "comment", "created_at", "updated_at").
		From(r.sql().Table(tableSettings)).
		Where(entsql.EQ("config_key", key)).
		Limit(1)

	var s model.Setting
	if err := r.queryRow(ctx, sel).Scan(&s.ID, &s.ConfigKey, &s.Value, &s.Comment, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Save 按 config_key 插入或更新
func (r *settingRepo) Save(ctx context.Context, setting *model.Setting) error {
	now := time.Now()
	existing, err := r.FindByKey(ctx, setting.ConfigKey)
	if err != nil && !errors.Is(err, constant.ErrNotFound) {
		return err
	}
	if existing != nil {
		ub := r.sql().Update(tableSettings).
			Set("value", setting.Value).
			Set("comment", setting.Comment).
			Set("updated_at", now).
			Where(entsql.EQ("id", existing.ID))
		if _, err := r.exec(ctx, ub); err != nil {
			return fmt.Errorf("更新配置 '%s' 失败: %w", setting.ConfigKey, err)
		}
		setting.ID, setting.CreatedAt, setting.UpdatedAt = existing.ID, existing.CreatedAt, now
		return nil
	}

	ib := r.sql().Insert(tableSettings).
		Columns("config_key", "value", "comment", "created_at", "updated_at").
		Values(setting.ConfigKey, setting.Value, setting.Comment, now, now)
	id, err := r.insert(ctx, ib)
	if err != nil {
		return fmt.Errorf("创建配置 '%s' 失败: %w", setting.ConfigKey, err)
	}
	setting.ID, setting.CreatedAt, setting.UpdatedAt = id, now, now
	return nil
}

func (r *settingRepo) FindAll(ctx context.Context) ([]*model.Setting, error) {
	sel := r.sql().Select("id", "config_key", "value", "comment", "created_at", "updated_at").
		From(r.sql().Table(tableSettings)).
		OrderBy("id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("查询全部配置失败: %w", err)
	}
	defer rows.Close()

	settings := make([]*model.Setting, 0)
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.ID, &s.ConfigKey, &s.Value, &s.Comment, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描配置失败: %w", err)
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

// Update 只更新已存在的键
func (r *settingRepo) Update(ctx context.Context, settingsToUpdate map[string]string) error {
	now := time.Now()
	for key, value := range settingsToUpdate {
		ub := r.sql().Update(tableSettings).
			Set("value", value).
			Set("updated_at", now).
			Where(entsql.EQ("config_key", key))
		if _, err := r.exec(ctx, ub); err != nil {
			return fmt.Errorf("更新配置 '%s' 失败: %w", key, err)
		}
	}
	return nil
}
