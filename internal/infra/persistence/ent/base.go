/*
 * @Description: 基于 ent SQL 构建器的仓储公共部分
 * @Author: 安知鱼
 * @Date: 2026-03-05 20:11:36
 * @LastEditTime: 2026-04-06 13:48:02
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anzhiyu-c/ibbs/pkg/constant"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Executor 同时被 *sql.DB 和 *sql.Tx 实现
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type base struct {
	ex      Executor
	dialect string
}

func (b base) sql() *entsql.DialectBuilder {
	return entsql.Dialect(b.dialect)
}

func (b base) query(ctx context.Context, q entsql.Querier) (*sql.Rows, error) {
	stmt, args := q.Query()
	return b.ex.QueryContext(ctx, stmt, args...)
}

func (b base) queryRow(ctx context.Context, q entsql.Querier) *sql.Row {
	stmt, args := q.Query()
	return b.ex.QueryRowContext(ctx, stmt, args...)
}

func (b base) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	stmt, args := q.Query()
	return b.ex.ExecContext(ctx, stmt, args...)
}

// insert 执行插入并返回自增主键。PostgreSQL 驱动不支持 LastInsertId，改用 RETURNING。
func (b base) insert(ctx context.Context, ib *entsql.InsertBuilder) (uint, error) {
	if b.dialect == dialect.Postgres {
		var id int64
		if err := b.queryRow(ctx, ib.Returning("id")).Scan(&id); err != nil {
			return 0, err
		}
		return uint(id), nil
	}
	res, err := b.exec(ctx, ib)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取自增ID失败: %w", err)
	}
	return uint(id), nil
}

// count 执行 COUNT(*) 查询
func (b base) count(ctx context.Context, table string, preds ...*entsql.Predicate) (int64, error) {
	t := b.sql().Table(table)
	sel := b.sql().Select(entsql.Count("*")).From(t)
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	var n int64
	if err := b.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// notFound 把 sql.ErrNoRows 转换为业务错误
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return constant.ErrNotFound
	}
	return err
}

func offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}
