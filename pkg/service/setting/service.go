/*
 * @Description: 站点设置服务，所有设置在启动时载入内存
 * @Author: 安知鱼
 * @Date: 2026-03-05 14:20:31
 * @LastEditTime: 2026-04-16 17:52:08
 * @LastEditors: 安知鱼
 */
package setting

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	"go.uber.org/zap"
)

// SettingService 定义了配置服务的接口
type SettingService interface {
	LoadAllSettings(ctx context.Context) error
	Get(key string) string
	GetBool(key string) bool
	GetInt(key string, fallback int) int
	// GetSiteConfig 返回公开配置，值按 bool/数字/字符串解析
	GetSiteConfig() map[string]interface{}
	// GetAdminSettings 返回除密钥外的全部配置
	GetAdminSettings() map[string]string
	UpdateSettings(ctx context.Context, settingsToUpdate map[string]string) error
}

type settingService struct {
	repo   repository.SettingRepository
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewSettingService(repo repository.SettingRepository, logger *zap.Logger) SettingService {
	return &settingService{
		repo:   repo,
		logger: logger,
		cache:  make(map[string]string),
	}
}

// LoadAllSettings 先放入代码中的默认值，再用数据库中的值覆盖
func (s *settingService) LoadAllSettings(ctx context.Context) error {
	newCache := make(map[string]string, len(configdef.AllSettings))
	for _, def := range configdef.AllSettings {
		newCache[def.Key.String()] = def.Value
	}

	dbSettings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.mu.Lock()
		s.cache = newCache
		s.mu.Unlock()
		s.logger.Warn("从数据库加载配置失败，使用代码中定义的默认配置", zap.Error(err))
		return err
	}
	for _, item := range dbSettings {
		newCache[item.ConfigKey] = item.Value
	}

	s.mu.Lock()
	s.cache = newCache
	s.mu.Unlock()

	s.logger.Info("站点配置已加载到缓存", zap.Int("count", len(newCache)))
	return nil
}

func (s *settingService) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key]
}

func (s *settingService) GetBool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(strings.ToLower(s.Get(key))))
	return b
}

func (s *settingService) GetInt(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s.Get(key)))
	if err != nil {
		return fallback
	}
	return n
}

func (s *settingService) GetSiteConfig() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{})
	for _, def := range configdef.AllSettings {
		if def.IsPublic && !def.IsSecret {
			out[def.Key.String()] = typedValue(s.cache[def.Key.String()])
		}
	}
	return out
}

func (s *settingService) GetAdminSettings() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for _, def := range configdef.AllSettings {
		if !def.IsSecret {
			out[def.Key.String()] = s.cache[def.Key.String()]
		}
	}
	return out
}

// UpdateSettings 只允许修改已定义且非密钥的配置项
func (s *settingService) UpdateSettings(ctx context.Context, settingsToUpdate map[string]string) error {
	if len(settingsToUpdate) == 0 {
		return nil
	}
	keys := make([]string, 0, len(settingsToUpdate))
	for key, value := range settingsToUpdate {
		def, ok := configdef.FindSetting(key)
		if !ok || def.IsSecret {
			return fmt.Errorf("%w: 不允许修改配置项 %s", constant.ErrBadRequest, key)
		}
		if err := validateValue(def.Key, value); err != nil {
			return err
		}
		keys = append(keys, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Update(ctx, settingsToUpdate); err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}
	for key, value := range settingsToUpdate {
		s.cache[key] = value
	}

	sort.Strings(keys)
	s.logger.Info("站点配置已更新", zap.Strings("keys", keys))
	return nil
}

func validateValue(key constant.SettingKey, value string) error {
	switch key {
	case constant.KeyPostModerationEnable, constant.KeyPostAutoTagEnable,
		constant.KeyRegisterCaptchaEnable, constant.KeyAntiforgeryEnable:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s 必须是 true 或 false", constant.ErrBadRequest, key)
		}
	case constant.KeyAIRateLimitPerMinute:
		if n, err := strconv.Atoi(value); err != nil || n <= 0 {
			return fmt.Errorf("%w: %s 必须是正整数", constant.ErrBadRequest, key)
		}
	}
	return nil
}

func typedValue(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	return raw
}
