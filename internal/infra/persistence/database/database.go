/*
 * @Description: 数据库连接管理 (支持 MySQL / PostgreSQL / SQLite)
 * @Author: 安知鱼
 * @Date: 2026-03-04 16:09:46
 * @LastEditTime: 2026-04-12 09:54:27
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/config"

	"entgo.io/ent/dialect"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryDSN 用于测试和演示的内存 SQLite 数据库
const MemoryDSN = ":memory:"

// DialectFromType 把配置里的数据库类型映射为 ent 方言名
func DialectFromType(dbType string) (string, error) {
	switch dbType {
	case "mysql", "mariadb":
		return dialect.MySQL, nil
	case "postgres", "postgresql":
		return dialect.Postgres, nil
	case "", "sqlite", "sqlite3":
		return dialect.SQLite, nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s (支持: mysql/mariadb, postgres, sqlite)", dbType)
	}
}

// NewSQLDB 根据配置创建连接池，返回连接池与对应的 ent 方言
func NewSQLDB(cfg *config.Config, logger *zap.Logger) (*sql.DB, string, error) {
	dbType := cfg.GetString(config.KeyDBType)
	dia, err := DialectFromType(dbType)
	if err != nil {
		return nil, "", err
	}

	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)

	var db *sql.DB
	switch dia {
	case dialect.MySQL:
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, "", fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbUser, dbPass, dbHost, dbPort, dbName)
		db, err = sql.Open("mysql", dsn)
	case dialect.Postgres:
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, "", fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPass, dbName)
		db, err = sql.Open("postgres", dsn)
	default:
		if dbName == "" {
			dbName = "ibbs.db"
		}
		path := dbName
		if dbName != MemoryDSN {
			if err := os.MkdirAll("./data", os.ModePerm); err != nil {
				return nil, "", fmt.Errorf("无法创建 data 目录: %w", err)
			}
			path = filepath.Join("./data", dbName)
		}
		logger.Info("SQLite 数据库路径", zap.String("path", path))
		db, err = OpenSQLite(path)
		if err != nil {
			return nil, "", err
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("打开 sql.DB 连接失败 (方言: %s): %w", dia, err)
	}

	if dia != dialect.SQLite {
		db.SetMaxIdleConns(10)
		db.SetMaxOpenConns(100)
		db.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("无法 Ping 通数据库 (%s): %w", dia, err)
	}

	logger.Info("数据库连接池创建成功", zap.String("dialect", dia))
	return db, dia, nil
}

// OpenSQLite 打开 SQLite 数据库并启用外键与忙等待。
// 内存库只允许一个连接，否则每个连接都会看到各自独立的空库。
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
	}
	if path == MemoryDSN {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(4)
	}
	return db, nil
}
