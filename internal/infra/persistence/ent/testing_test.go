package ent

import (
	"context"
	"database/sql"
	"testing"

	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/database"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrationService(db, dialect.SQLite).RunMigrations(context.Background()))
	return db
}

func seedUser(t *testing.T, db *sql.DB, email, nickname string) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Nickname:     nickname,
		UserGroupID:  model.UserGroupMember,
		Status:       model.UserStatusActive,
	}
	require.NoError(t, NewUserRepository(db, dialect.SQLite).Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, db *sql.DB, ownerID uint, title string, tags ...string) *model.Post {
	t.Helper()
	p := &model.Post{OwnerID: ownerID, Title: title, Content: title + " 内容", ContentHTML: "<p>" + title + "</p>", Tags: tags}
	require.NoError(t, NewPostRepository(db, dialect.SQLite).Create(context.Background(), p))
	return p
}
