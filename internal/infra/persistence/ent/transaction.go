/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-05 23:40:12
 * @LastEditTime: 2026-03-21 18:33:59
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
)

// NewRepositories 在给定的执行器上构建全部仓储，执行器可以是连接池或事务
func NewRepositories(ex Executor, dialectName string) repository.Repositories {
	return repository.Repositories{
		User:      NewUserRepository(ex, dialectName),
		Post:      NewPostRepository(ex, dialectName),
		Rating:    NewPostRatingRepository(ex, dialectName),
		BugReport: NewBugReportRepository(ex, dialectName),
		Lookup:    NewLookupRepository(ex, dialectName),
		Setting:   NewSettingRepository(ex, dialectName),
	}
}

type sqlTransactionManager struct {
	db      *sql.DB
	dialect string
}

// NewTransactionManager 创建基于 database/sql 事务的事务管理器
func NewTransactionManager(db *sql.DB, dialectName string) repository.TransactionManager {
	return &sqlTransactionManager{db: db, dialect: dialectName}
}

// Do 开启事务并把事务内的仓储交给 fn；fn 出错或 panic 时回滚
func (tm *sqlTransactionManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(NewRepositories(tx, tm.dialect)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("事务执行失败: %w, 回滚事务也失败: %v", err, rerr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}
