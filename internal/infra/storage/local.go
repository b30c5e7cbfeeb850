/*
 * @Description: 本地磁盘附件存储
 * @Author: 安知鱼
 * @Date: 2026-03-13 10:48:02
 * @LastEditTime: 2026-03-27 11:40:19
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider 把附件保存在本地目录，通过 urlPrefix 对外提供访问
type LocalProvider struct {
	root      string
	urlPrefix string
}

func NewLocalProvider(root, urlPrefix string) (*LocalProvider, error) {
	if root == "" {
		root = "data/attachments"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("解析附件目录失败: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("创建附件目录失败: %w", err)
	}
	return &LocalProvider{root: abs, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (p *LocalProvider) Upload(_ context.Context, key, _ string, data []byte) (*UploadResult, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	fullPath := filepath.Join(p.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("创建附件子目录失败: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return nil, fmt.Errorf("写入附件失败: %w", err)
	}
	return &UploadResult{Key: cleaned, URL: p.urlPrefix + "/" + cleaned, Size: int64(len(data))}, nil
}

func (p *LocalProvider) Get(_ context.Context, key string) (io.ReadCloser, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(p.root, filepath.FromSlash(cleaned)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("读取附件失败: %w", err)
	}
	return f, nil
}

func (p *LocalProvider) Delete(_ context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(p.root, filepath.FromSlash(cleaned))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除附件失败: %w", err)
	}
	return nil
}
