/*
 * @Description: 数据库表结构迁移
 * @Author: 安知鱼
 * @Date: 2026-03-04 17:20:11
 * @LastEditTime: 2026-04-07 21:33:45
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

type columnKind int

const (
	colID columnKind = iota
	colRef
	colRefNullable
	colInt
	colBool
	colTime
	colTimeNullable
	colShortText
	colText
)

type column struct {
	name    string
	kind    columnKind
	size    int
	notNull bool
	def     string
}

type index struct {
	name    string
	columns []string
	unique  bool
}

type table struct {
	name    string
	columns []column
	indexes []index
}

// 所有业务表的结构定义，新增字段只需追加列，迁移会补齐缺失的列
var tables = []table{
	{
		name: "users",
		columns: []column{
			{name: "id", kind: colID},
			{name: "created_at", kind: colTime, notNull: true},
			{name: "updated_at", kind: colTime, notNull: true},
			{name: "email", kind: colShortText, size: 255, notNull: true},
			{name: "password_hash", kind: colShortText, size: 255, notNull: true},
			{name: "nickname", kind: colShortText, size: 50, notNull: true, def: "''"},
			{name: "avatar", kind: colShortText, size: 512, notNull: true, def: "''"},
			{name: "bio", kind: colShortText, size: 500, notNull: true, def: "''"},
			{name: "user_group_id", kind: colRef, notNull: true},
			{name: "status", kind: colInt, notNull: true, def: "1"},
			{name: "last_login_at", kind: colTimeNullable},
		},
		indexes: []index{{name: "idx_users_email", columns: []string{"email"}, unique: true}},
	},
	{
		name: "settings",
		columns: []column{
			{name: "id", kind: colID},
			{name: "created_at", kind: colTime, notNull: true},
			{name: "updated_at", kind: colTime, notNull: true},
			{name: "config_key", kind: colShortText, size: 100, notNull: true},
			{name: "value", kind: colText, notNull: true},
			{name: "comment", kind: colShortText, size: 255, notNull: true, def: "''"},
		},
		indexes: []index{{name: "idx_settings_key", columns: []string{"config_key"}, unique: true}},
	},
	{
		name: "posts",
		columns: []column{
			{name: "id", kind: colID},
			{name: "created_at", kind: colTime, notNull: true},
			{name: "updated_at", kind: colTime, notNull: true},
			{name: "owner_id", kind: colRef, notNull: true},
			{name: "title", kind: colShortText, size: 255, notNull: true},
			{name: "content", kind: colText, notNull: true},
			{name: "content_html", kind: colText, notNull: true},
			{name: "tags", kind: colShortText, size: 512, notNull: true, def: "'[]'"},
			{name: "rating_count", kind: colInt, notNull: true, def: "0"},
		},
		indexes: []index{
			{name: "idx_posts_owner_id", columns: []string{"owner_id"}},
			{name: "idx_posts_created_at", columns: []string{"created_at"}},
		},
	},
	{
		name: "post_ratings",
		columns: []column{
			{name: "id", kind: colID},
			{name: "created_at", kind: colTime, notNull: true},
			{name: "updated_at", kind: colTime, notNull: true},
			{name: "post_id", kind: colRef, notNull: true},
			{name: "user_id", kind: colRef, notNull: true},
		},
		indexes: []index{
			{name: "idx_post_ratings_post_user", columns: []string{"post_id", "user_id"}, unique: true},
			{name: "idx_post_ratings_user_id", columns: []string{"user_id"}},
		},
	},
	{
		name: "bug_reports",
		columns: []column{
			{name: "id", kind: colID},
			{name: "created_at", kind: colTime, notNull: true},
			{name: "updated_at", kind: colTime, notNull: true},
			{name: "reporter_id", kind: colRefNullable},
			{name: "title", kind: colShortText, size: 255, notNull: true},
			{name: "description", kind: colText, notNull: true},
			{name: "page_url", kind: colShortText, size: 1024, notNull: true, def: "''"},
			{name: "severity", kind: colShortText, size: 50, notNull: true},
			{name: "status", kind: colShortText, size: 50, notNull: true},
			{name: "attachment_url", kind: colShortText, size: 1024, notNull: true, def: "''"},
		},
		indexes: []index{
			{name: "idx_bug_reports_reporter_id", columns: []string{"reporter_id"}},
			{name: "idx_bug_reports_status", columns: []string{"status"}},
		},
	},
	{
		name: "lookup_masters",
		columns: []column{
			{name: "id", kind: colID},
			{name: "lookup_type", kind: colShortText, size: 64, notNull: true},
			{name: "code", kind: colShortText, size: 64, notNull: true},
			{name: "display_name", kind: colShortText, size: 255, notNull: true},
			{name: "sort_order", kind: colInt, notNull: true, def: "0"},
			{name: "is_active", kind: colBool, notNull: true, def: "TRUE"},
		},
		indexes: []index{{name: "idx_lookup_masters_type_code", columns: []string{"lookup_type", "code"}, unique: true}},
	},
}

// MigrationService 按方言创建缺失的表、列和索引
type MigrationService struct {
	db      *sql.DB
	dialect string
}

func NewMigrationService(db *sql.DB, dialectName string) *MigrationService {
	return &MigrationService{db: db, dialect: dialectName}
}

// RunMigrations 执行迁移，可重复执行
func (m *MigrationService) RunMigrations(ctx context.Context) error {
	for _, t := range tables {
		if _, err := m.db.ExecContext(ctx, m.createTableSQL(t)); err != nil {
			return fmt.Errorf("创建表 %s 失败: %w", t.name, err)
		}
		for _, c := range t.columns {
			if c.kind == colID {
				continue
			}
			exists, err := m.columnExists(ctx, t.name, c.name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", m.quote(t.name), m.columnDef(c))
			if _, err := m.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("为表 %s 添加列 %s 失败: %w", t.name, c.name, err)
			}
		}
		for _, idx := range t.indexes {
			if err := m.createIndex(ctx, t.name, idx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MigrationService) createTableSQL(t table) string {
	defs := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		defs = append(defs, m.columnDef(c))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", m.quote(t.name), strings.Join(defs, ",\n\t"))
	if m.dialect == dialect.MySQL {
		stmt += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return stmt
}

func (m *MigrationService) columnDef(c column) string {
	var b strings.Builder
	b.WriteString(m.quote(c.name))
	b.WriteString(" ")
	b.WriteString(m.columnType(c))
	if c.kind == colID {
		return b.String()
	}
	if c.notNull {
		b.WriteString(" NOT NULL")
	}
	if c.def != "" {
		def := c.def
		if c.kind == colBool && m.dialect == dialect.MySQL {
			def = "1"
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(def)
	}
	return b.String()
}

func (m *MigrationService) columnType(c column) string {
	switch m.dialect {
	case dialect.MySQL:
		switch c.kind {
		case colID:
			return "BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY"
		case colRef, colRefNullable:
			return "BIGINT UNSIGNED"
		case colInt:
			return "BIGINT"
		case colBool:
			return "TINYINT(1)"
		case colTime, colTimeNullable:
			return "DATETIME(3)"
		case colShortText:
			return fmt.Sprintf("VARCHAR(%d)", c.size)
		default:
			return "LONGTEXT"
		}
	case dialect.Postgres:
		switch c.kind {
		case colID:
			return "BIGSERIAL PRIMARY KEY"
		case colRef, colRefNullable, colInt:
			return "BIGINT"
		case colBool:
			return "BOOLEAN"
		case colTime, colTimeNullable:
			return "TIMESTAMPTZ"
		case colShortText:
			return fmt.Sprintf("VARCHAR(%d)", c.size)
		default:
			return "TEXT"
		}
	default:
		switch c.kind {
		case colID:
			return "INTEGER PRIMARY KEY AUTOINCREMENT"
		case colRef, colRefNullable, colInt:
			return "INTEGER"
		case colBool:
			return "BOOLEAN"
		case colTime, colTimeNullable:
			return "DATETIME"
		default:
			return "TEXT"
		}
	}
}

func (m *MigrationService) createIndex(ctx context.Context, tableName string, idx index) error {
	cols := make([]string, len(idx.columns))
	for i, c := range idx.columns {
		cols[i] = m.quote(c)
	}
	kind := "INDEX"
	if idx.unique {
		kind = "UNIQUE INDEX"
	}

	// MySQL 不支持 CREATE INDEX IF NOT EXISTS
	if m.dialect == dialect.MySQL {
		stmt := fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, idx.name, m.quote(tableName), strings.Join(cols, ", "))
		if _, err := m.db.ExecContext(ctx, stmt); err != nil && !strings.Contains(err.Error(), "Duplicate key name") {
			return fmt.Errorf("创建索引 %s 失败: %w", idx.name, err)
		}
		return nil
	}

	stmt := fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)", kind, idx.name, m.quote(tableName), strings.Join(cols, ", "))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("创建索引 %s 失败: %w", idx.name, err)
	}
	return nil
}

// columnExists 检查列是否存在
func (m *MigrationService) columnExists(ctx context.Context, tableName, columnName string) (bool, error) {
	var query string
	var args []any
	switch m.dialect {
	case dialect.MySQL:
		query = `SELECT COUNT(*) FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`
		args = []any{tableName, columnName}
	case dialect.Postgres:
		query = `SELECT COUNT(*) FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`
		args = []any{tableName, columnName}
	default:
		query = `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`
		args = []any{tableName, columnName}
	}

	var count int
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("检查列 %s.%s 是否存在失败: %w", tableName, columnName, err)
	}
	return count > 0, nil
}

func (m *MigrationService) quote(ident string) string {
	if m.dialect == dialect.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}
