/*
 * @Description: 参考数据 (lookup master) 服务
 * @Author: 安知鱼
 * @Date: 2026-03-12 10:04:51
 * @LastEditTime: 2026-04-08 14:33:27
 * @LastEditors: 安知鱼
 */
package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "lookup:"
	cacheTTL       = 10 * time.Minute
)

type Service interface {
	// GetLookups 返回某类型下启用的条目，按 sort_order 排序
	GetLookups(ctx context.Context, lookupType string) ([]model.LookupResponse, error)
	IsValidCode(ctx context.Context, lookupType, code string) (bool, error)
	// Warmup 重新加载所有类型到缓存
	Warmup(ctx context.Context) error
}

type service struct {
	repo   repository.LookupRepository
	cache  utility.CacheService
	logger *zap.Logger
}

func NewService(repo repository.LookupRepository, cache utility.CacheService, logger *zap.Logger) Service {
	return &service{repo: repo, cache: cache, logger: logger}
}

func normalizeType(lookupType string) (constant.LookupType, error) {
	t := constant.LookupType(strings.ToUpper(strings.TrimSpace(lookupType)))
	for _, known := range constant.KnownLookupTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: 未知的参考数据类型 %q", constant.ErrBadRequest, lookupType)
}

func (s *service) GetLookups(ctx context.Context, lookupType string) ([]model.LookupResponse, error) {
	t, err := normalizeType(lookupType)
	if err != nil {
		return nil, err
	}

	var cached []model.LookupResponse
	if hit, err := utility.GetJSON(ctx, s.cache, cacheKeyPrefix+t.String(), &cached); err != nil {
		s.logger.Warn("读取参考数据缓存失败", zap.String("type", t.String()), zap.Error(err))
	} else if hit {
		return cached, nil
	}
	return s.load(ctx, t)
}

func (s *service) load(ctx context.Context, t constant.LookupType) ([]model.LookupResponse, error) {
	items, err := s.repo.FindByType(ctx, t.String())
	if err != nil {
		return nil, fmt.Errorf("查询参考数据失败: %w", err)
	}
	out := make([]model.LookupResponse, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		out = append(out, model.LookupResponse{
			Code:        item.Code,
			DisplayName: item.DisplayName,
			SortOrder:   item.SortOrder,
		})
	}
	if err := utility.SetJSON(ctx, s.cache, cacheKeyPrefix+t.String(), out, cacheTTL); err != nil {
		s.logger.Warn("写入参考数据缓存失败", zap.String("type", t.String()), zap.Error(err))
	}
	return out, nil
}

func (s *service) IsValidCode(ctx context.Context, lookupType, code string) (bool, error) {
	items, err := s.GetLookups(ctx, lookupType)
	if err != nil {
		return false, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, item := range items {
		if item.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Warmup(ctx context.Context) error {
	for _, t := range constant.KnownLookupTypes() {
		if _, err := s.load(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
