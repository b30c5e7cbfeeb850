/*
 * @Description: 数据库初始化引导程序
 * @Author: 安知鱼
 * @Date: 2026-03-05 16:40:22
 * @LastEditTime: 2026-04-16 17:58:31
 * @LastEditors: 安知鱼
 */
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/database"
	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"go.uber.org/zap"
)

// SettingEnvPrefix 首次启动时可以用 IBBS_SETTING_DEFAULT_<KEY> 覆盖配置项的默认值
const SettingEnvPrefix = "IBBS_SETTING_DEFAULT_"

// secretLength 自动生成的密钥长度
const secretLength = 32

type Bootstrapper struct {
	db          *sql.DB
	dialectName string
	repos       repository.Repositories
	logger      *zap.Logger
}

func NewBootstrapper(db *sql.DB, dialectName string, repos repository.Repositories, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		db:          db,
		dialectName: dialectName,
		repos:       repos,
		logger:      logger,
	}
}

// InitializeDatabase 迁移表结构，然后补齐缺失的配置项和参考数据
func (b *Bootstrapper) InitializeDatabase(ctx context.Context) error {
	b.logger.Info("开始执行数据库初始化引导程序")

	if err := database.NewMigrationService(b.db, b.dialectName).RunMigrations(ctx); err != nil {
		return fmt.Errorf("数据库 schema 创建/更新失败: %w", err)
	}
	b.logger.Info("数据库 Schema 同步成功")

	if err := b.syncSettings(ctx); err != nil {
		return err
	}
	b.initLookups(ctx)
	b.checkUserTable(ctx)

	b.logger.Info("数据库初始化引导程序执行完成")
	return nil
}

// syncSettings 确保所有在代码中定义的配置项都存在于数据库中，已有的值不会被覆盖
func (b *Bootstrapper) syncSettings(ctx context.Context) error {
	newlyAdded := 0
	for _, def := range configdef.AllSettings {
		_, err := b.repos.Setting.FindByKey(ctx, def.Key.String())
		if err == nil {
			continue
		}
		if !errors.Is(err, constant.ErrNotFound) {
			return fmt.Errorf("查询配置项 '%s' 失败: %w", def.Key, err)
		}

		value, err := defaultValue(def)
		if err != nil {
			return err
		}
		if envValue, ok := os.LookupEnv(SettingEnvPrefix + strings.ToUpper(def.Key.String())); ok {
			value = envValue
			b.logger.Info("配置项默认值由环境变量覆盖", zap.String("key", def.Key.String()))
		}

		if err := b.repos.Setting.Save(ctx, &model.Setting{ConfigKey: def.Key.String(), Value: value, Comment: def.Comment}); err != nil {
			return fmt.Errorf("新增默认配置项 '%s' 失败: %w", def.Key, err)
		}
		newlyAdded++
	}

	b.logger.Info("站点配置同步完成", zap.Int("added", newlyAdded))
	return nil
}

// defaultValue 密钥类配置在首次写入时随机生成
func defaultValue(def configdef.Definition) (string, error) {
	switch def.Key {
	case constant.KeyJWTSecret, constant.KeyIDSeed:
		value, err := utils.GenerateRandomString(secretLength)
		if err != nil {
			return "", fmt.Errorf("生成 %s 失败: %w", def.Key, err)
		}
		return value, nil
	}
	return def.Value, nil
}

// initLookups 写入缺失的参考数据，管理员修改过的条目保持不变
func (b *Bootstrapper) initLookups(ctx context.Context) {
	created := 0
	for i := range configdef.AllLookups {
		item := configdef.AllLookups[i]
		ok, err := b.repos.Lookup.CreateIfAbsent(ctx, &item)
		if err != nil {
			b.logger.Warn("写入参考数据失败",
				zap.String("type", item.LookupType), zap.String("code", item.Code), zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}
	b.logger.Info("参考数据初始化完成", zap.Int("created", created))
}

func (b *Bootstrapper) checkUserTable(ctx context.Context) {
	count, err := b.repos.User.Count(ctx)
	if err != nil {
		b.logger.Warn("查询用户数量失败", zap.Error(err))
		return
	}
	if count == 0 {
		b.logger.Info("用户表为空，第一个注册的用户将成为管理员")
	}
}

// InitIDEncoder 使用数据库中的 ID_SEED 初始化公共 ID 编码器，必须在配置载入之后调用
func InitIDEncoder(settingSvc setting.SettingService) error {
	seed := settingSvc.Get(constant.KeyIDSeed.String())
	if seed == "" {
		return errors.New("ID_SEED 未从数据库加载")
	}
	if err := idgen.InitSqidsEncoderWithSeed(seed); err != nil {
		return fmt.Errorf("初始化公共 ID 编码器失败: %w", err)
	}
	return nil
}
