package ent

import (
	"context"
	"fmt"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

const tableLookupMasters = "lookup_masters"

type lookupRepo struct {
	base
}

func NewLookupRepository(ex Executor, dialectName string) repository.LookupRepository {
	return &lookupRepo{base{ex: ex, dialect: dialectName}}
}

func (r *lookupRepo) FindByType(ctx context.Context, lookupType string) ([]*model.LookupMaster, error) {
	sel := r.sql().Select("id", "lookup_type", "code", "display_name", "sort_order", "is_active").
		From(r.sql().Table(tableLookupMasters)).
		Where(entsql.EQ("lookup_type", lookupType)).
		OrderBy("sort_order", "id")

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("查询参考数据失败: %w", err)
	}
	defer rows.Close()

	items := make([]*model.LookupMaster, 0)
	for rows.Next() {
		var m model.LookupMaster
		if err := rows.Scan(&m.ID, &m.LookupType, &m.Code, &m.DisplayName, &m.SortOrder, &m.IsActive); err != nil {
			return nil, fmt.Errorf("扫描参考数据失败: %w", err)
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *lookupRepo) CreateIfAbsent(ctx context.Context, item *model.LookupMaster) (bool, error) {
	n, err := r.count(ctx, tableLookupMasters,
		entsql.EQ("lookup_type", item.LookupType), entsql.EQ("code", item.Code))
	if err != nil {
		return false, fmt.Errorf("检查参考数据失败: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	ib := r.sql().Insert(tableLookupMasters).
		Columns("lookup_type", "code", "display_name", "sort_order", "is_active").
		Values(item.LookupType, item.Code, item.DisplayName, item.SortOrder, item.IsActive)
	id, err := r.insert(ctx, ib)
	if err != nil {
		return false, fmt.Errorf("创建参考数据失败: %w", err)
	}
	item.ID = id
	return true, nil
}
