/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-05 00:43:46
 * @LastEditTime: 2026-03-21 16:55:16
 * @LastEditors: 安知鱼
 */
package repository

import "context"

// Repositories 聚合了所有在单个事务中可能用到的仓储接口。
type Repositories struct {
	User      UserRepository
	Post      PostRepository
	Rating    PostRatingRepository
	BugReport BugReportRepository
	Lookup    LookupRepository
	Setting   SettingRepository
}

// TransactionManager 在单个事务中执行一个业务逻辑单元。
// fn 返回错误时事务回滚，否则提交。
type TransactionManager interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}
