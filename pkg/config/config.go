/*
 * @Description: 统一配置管理，ini 文件作为默认值，环境变量覆盖
 * @Author: 安知鱼
 * @Date: 2026-03-02 10:12:40
 * @LastEditTime: 2026-04-18 16:25:11
 * @LastEditors: 安知鱼
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultFilePath 是默认配置文件的位置
const DefaultFilePath = "data/conf.ini"

// EnvPrefix 是覆盖配置使用的环境变量前缀，例如 IBBS_DATABASE_HOST
const EnvPrefix = "IBBS"

const (
	KeyServerPort  = "System.Port"
	KeyServerDebug = "System.Debug"

	KeyDBType     = "Database.Type"
	KeyDBHost     = "Database.Host"
	KeyDBPort     = "Database.Port"
	KeyDBUser     = "Database.User"
	KeyDBPassword = "Database.Password"
	KeyDBName     = "Database.Name"
	KeyDBDebug    = "Database.Debug"

	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyMongoURI      = "Mongo.URI"
	KeyMongoDatabase = "Mongo.Database"

	KeyAgentProvider = "Agent.Provider"
	KeyAgentBaseURL  = "Agent.BaseURL"
	KeyAgentAPIKey   = "Agent.APIKey"
	KeyAgentModel    = "Agent.Model"
	KeyAgentTimeout  = "Agent.TimeoutSeconds"

	KeyStorageType      = "Storage.Type"
	KeyStorageLocalPath = "Storage.LocalPath"

	KeyS3Bucket    = "S3.Bucket"
	KeyS3Region    = "S3.Region"
	KeyS3Endpoint  = "S3.Endpoint"
	KeyS3AccessKey = "S3.AccessKey"
	KeyS3SecretKey = "S3.SecretKey"
	KeyS3PublicURL = "S3.PublicURL"
)

// 定义所有已知的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyMongoURI, KeyMongoDatabase,
	KeyAgentProvider, KeyAgentBaseURL, KeyAgentAPIKey, KeyAgentModel, KeyAgentTimeout,
	KeyStorageType, KeyStorageLocalPath,
	KeyS3Bucket, KeyS3Region, KeyS3Endpoint, KeyS3AccessKey, KeyS3SecretKey, KeyS3PublicURL,
}

// 文件和环境变量都没有提供时使用的内部默认值
var builtinDefaults = map[string]interface{}{
	KeyServerPort:       "8091",
	KeyDBType:           "sqlite",
	KeyDBName:           "ibbs.db",
	KeyMongoDatabase:    "ibbs",
	KeyAgentProvider:    "none",
	KeyAgentModel:       "gemini-2.5-flash",
	KeyAgentTimeout:     30,
	KeyStorageType:      "local",
	KeyStorageLocalPath: "data/attachments",
	KeyS3Region:         "us-east-1",
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 从默认位置加载配置
func NewConfig(logger *zap.Logger) (*Config, error) {
	return NewConfigFromFile(DefaultFilePath, logger)
}

// NewConfigFromFile 手动加载配置：先读 ini 文件，再用环境变量覆盖。
// 文件不存在时会创建一份使用 SQLite 的默认配置。
func NewConfigFromFile(filePath string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	vp := viper.New()
	for key, value := range builtinDefaults {
		vp.SetDefault(key, value)
	}

	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("解析配置文件 '%s' 失败: %w", filePath, err)
		}
		logger.Info("未找到配置文件，将创建默认配置文件", zap.String("path", filePath))
		if err := createDefaultConfigFile(filePath); err != nil {
			logger.Warn("创建默认配置文件失败，将仅依赖环境变量或内部默认值", zap.Error(err))
		} else if iniCfg, err = ini.Load(filePath); err != nil {
			logger.Warn("重新加载配置文件失败", zap.Error(err))
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值不覆盖内部默认值
				if strings.TrimSpace(key.Value()) == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
	}

	envReplacer := strings.NewReplacer(".", "_")
	for _, key := range allKeys {
		envVarName := fmt.Sprintf("%s_%s", EnvPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			logger.Info("环境变量覆盖配置", zap.String("env", envVarName), zap.String("key", key))
		}
	}

	return &Config{vp: vp}, nil
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	defaultConfig := `[System]
Port = 8091
Debug = false

[Database]
Type = sqlite
Name = ibbs.db
Debug = false

# Redis 配置（可选），留空 Addr 时使用内存缓存
[Redis]
Addr =
Password =
DB = 0

# MongoDB 知识库（可选），留空 URI 时使用内置知识库
[Mongo]
URI =
Database = ibbs

# AI 代理: http | gemini | none
[Agent]
Provider = none
BaseURL =
APIKey =
Model = gemini-2.5-flash
TimeoutSeconds = 30

# 附件存储: local | s3
[Storage]
Type = local
LocalPath = data/attachments

[S3]
Bucket =
Region = us-east-1
Endpoint =
AccessKey =
SecretKey =
PublicURL =
`
	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
