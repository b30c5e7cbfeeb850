// Package testutil 为服务层和处理器测试提供内存数据库与 AI 代理替身
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/database"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/ibbs/internal/pkg/security"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/require"
)

// DB 是一套基于内存 SQLite 的仓储
type DB struct {
	SQL   *sql.DB
	Repos repository.Repositories
	Tx    repository.TransactionManager
}

// NewDB 打开内存 SQLite 并执行迁移，同时初始化公共 ID 编码器
func NewDB(t *testing.T) *DB {
	t.Helper()
	require.NoError(t, idgen.InitSqidsEncoderWithSeed("ibbs-test-seed"))

	db, err := database.OpenSQLite(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationService(db, dialect.SQLite).RunMigrations(context.Background()))

	return &DB{
		SQL:   db,
		Repos: ent.NewRepositories(db, dialect.SQLite),
		Tx:    ent.NewTransactionManager(db, dialect.SQLite),
	}
}

// SeedUser 创建一个激活状态的用户，密码为 "password"
func (d *DB) SeedUser(t *testing.T, email, nickname string, groupID uint) *model.User {
	t.Helper()
	hash, err := security.HashPassword("password")
	require.NoError(t, err)
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		UserGroupID:  groupID,
		Status:       model.UserStatusActive,
	}
	require.NoError(t, d.Repos.User.Create(context.Background(), u))
	return u
}

// SeedPost 直接写入一篇帖子，不经过审核和渲染
func (d *DB) SeedPost(t *testing.T, ownerID uint, title string, tags ...string) *model.Post {
	t.Helper()
	p := &model.Post{
		OwnerID:     ownerID,
		Title:       title,
		Content:     title + " 正文",
		ContentHTML: "<p>" + title + " 正文</p>",
		Tags:        tags,
	}
	require.NoError(t, d.Repos.Post.Create(context.Background(), p))
	return p
}

// SeedLookups 写入参考数据
func (d *DB) SeedLookups(t *testing.T, items []model.LookupMaster) {
	t.Helper()
	for i := range items {
		item := items[i]
		_, err := d.Repos.Lookup.CreateIfAbsent(context.Background(), &item)
		require.NoError(t, err)
	}
}
