/*
 * @Description: 附件存储接口
 * @Author: 安知鱼
 * @Date: 2026-03-13 10:21:55
 * @LastEditTime: 2026-03-27 11:26:38
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrObjectNotFound 表示对象不存在
var ErrObjectNotFound = errors.New("附件不存在")

// UploadResult 上传成功后的信息
type UploadResult struct {
	Key  string
	URL  string
	Size int64
}

// IStorageProvider 定义了附件存储提供者必须实现的接口。
type IStorageProvider interface {
	// Upload 保存对象并返回可访问的 URL
	Upload(ctx context.Context, key, contentType string, data []byte) (*UploadResult, error)
	// Get 返回对象内容流，调用方负责关闭
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewProviderFromConfig 根据 Storage.Type 选择本地或 S3 存储
func NewProviderFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (IStorageProvider, error) {
	switch strings.ToLower(cfg.GetString(config.KeyStorageType)) {
	case "s3":
		return NewAWSS3Provider(ctx, S3Options{
			Bucket:    cfg.GetString(config.KeyS3Bucket),
			Region:    cfg.GetString(config.KeyS3Region),
			Endpoint:  cfg.GetString(config.KeyS3Endpoint),
			AccessKey: cfg.GetString(config.KeyS3AccessKey),
			SecretKey: cfg.GetString(config.KeyS3SecretKey),
			PublicURL: cfg.GetString(config.KeyS3PublicURL),
		}, logger)
	case "", "local":
		return NewLocalProvider(cfg.GetString(config.KeyStorageLocalPath), "/api/attachments")
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", cfg.GetString(config.KeyStorageType))
	}
}

// BuildObjectKey 生成形如 bug-reports/2026/03/<uuid>.png 的对象键
func BuildObjectKey(prefix, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return path.Join(prefix, now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
}

// cleanKey 拒绝绝对路径和目录穿越
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, `\`, "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("非法的对象键: %q", key)
	}
	return cleaned, nil
}
