/*
 * @Description: 注册用图形验证码服务
 * @Author: 安知鱼
 * @Date: 2026-03-07 09:40:12
 * @LastEditTime: 2026-04-12 16:02:37
 * @LastEditors: 安知鱼
 */
package imagecaptcha

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"github.com/mojocn/base64Captcha"
	"go.uber.org/zap"
)

const (
	captchaCachePrefix = "captcha:image:"
	captchaTTL         = 5 * time.Minute
	captchaLength      = 5
)

// ImageCaptchaService 定义了图形验证码服务的接口
type ImageCaptchaService interface {
	// Generate 生成验证码，返回验证码 ID 和 Base64 图片
	Generate(ctx context.Context) (captchaID string, imageBase64 string, err error)
	// Verify 验证验证码，无论对错都会作废
	Verify(ctx context.Context, captchaID, answer string) error
}

type imageCaptchaService struct {
	cacheSvc utility.CacheService
	driver   base64Captcha.Driver
	logger   *zap.Logger
}

func NewImageCaptchaService(cacheSvc utility.CacheService, logger *zap.Logger) ImageCaptchaService {
	return &imageCaptchaService{
		cacheSvc: cacheSvc,
		driver:   base64Captcha.NewDriverDigit(80, 240, captchaLength, 0.7, 80),
		logger:   logger,
	}
}

func (s *imageCaptchaService) Generate(ctx context.Context) (string, string, error) {
	store := &cacheStore{ctx: ctx, cache: s.cacheSvc, logger: s.logger}
	captcha := base64Captcha.NewCaptcha(s.driver, store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return "", "", fmt.Errorf("生成验证码失败: %w", err)
	}
	if store.err != nil {
		return "", "", fmt.Errorf("保存验证码失败: %w", store.err)
	}
	return id, b64s, nil
}

func (s *imageCaptchaService) Verify(ctx context.Context, captchaID, answer string) error {
	captchaID = strings.TrimSpace(captchaID)
	answer = strings.TrimSpace(answer)
	if captchaID == "" || answer == "" {
		return constant.ErrCaptchaInvalid
	}
	store := &cacheStore{ctx: ctx, cache: s.cacheSvc, logger: s.logger}
	if !store.Verify(captchaID, answer, true) {
		return constant.ErrCaptchaInvalid
	}
	return nil
}

// cacheStore 把 base64Captcha 的答案保存到缓存服务，多实例部署时共享
type cacheStore struct {
	ctx    context.Context
	cache  utility.CacheService
	logger *zap.Logger
	err    error
}

var _ base64Captcha.Store = (*cacheStore)(nil)

func (s *cacheStore) Set(id string, value string) error {
	s.err = s.cache.Set(s.ctx, captchaCachePrefix+id, value, captchaTTL)
	return s.err
}

func (s *cacheStore) Get(id string, clear bool) string {
	var (
		val string
		err error
	)
	if clear {
		val, err = s.cache.GetDel(s.ctx, captchaCachePrefix+id)
	} else {
		val, err = s.cache.Get(s.ctx, captchaCachePrefix+id)
	}
	if err != nil {
		s.logger.Warn("读取验证码失败", zap.String("id", id), zap.Error(err))
		return ""
	}
	return val
}

func (s *cacheStore) Verify(id, answer string, clear bool) bool {
	stored := s.Get(id, clear)
	return stored != "" && stored == answer
}

