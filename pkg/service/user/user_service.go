/*
 * @Description: 用户资料与个人主页
 * @Author: 安知鱼
 * @Date: 2025-06-20 13:27:06
 * @LastEditTime: 2026-04-15 09:31:52
 * @LastEditors: 安知鱼
 */
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/pkg/security"
	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/service/auth"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

	"go.uber.org/zap"
)

const (
	// RecentPostLimit 个人主页展示的最近帖子数
	RecentPostLimit = 20
	ProfileCacheTTL = 5 * time.Minute

	profileCachePrefix = "user:profile:"
)

// UserService 定义了用户相关的业务逻辑接口
type UserService interface {
	GetUserInfo(ctx context.Context, userID uint) (*model.UserInfoResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req *model.UpdateProfileRequest) (*model.UserInfoResponse, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	// GetUserProfileData 返回公开资料、统计数据和最近的帖子，结果缓存 5 分钟
	GetUserProfileData(ctx context.Context, publicUserID string) (*model.UserProfileResponse, error)
	// InvalidateProfile 清除这些用户的个人主页缓存
	InvalidateProfile(ctx context.Context, userIDs ...uint)
}

// userService 是 UserService 接口的实现
type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	cache    utility.CacheService
	logger   *zap.Logger
}

// NewUserService 是 userService 的构造函数
func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, cache utility.CacheService, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		cache:    cache,
		logger:   logger,
	}
}

func profileCacheKey(userID uint) string {
	return fmt.Sprintf("%s%d", profileCachePrefix, userID)
}

func (s *userService) GetUserInfo(ctx context.Context, userID uint) (*model.UserInfoResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}
	info := auth.ToUserInfo(user, true)
	return &info, nil
}

// UpdateProfile 只更新请求中提供的字段
func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *model.UpdateProfileRequest) (*model.UserInfoResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}

	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if n := utils.RuneLen(nickname); n == 0 || n > 50 {
			return nil, fmt.Errorf("%w: 昵称长度需在 1 到 50 字之间", constant.ErrBadRequest)
		}
		user.Nickname = nickname
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if utils.RuneLen(bio) > 500 {
			return nil, fmt.Errorf("%w: 个人简介不能超过 500 字", constant.ErrBadRequest)
		}
		user.Bio = bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户信息失败: %w", err)
	}
	s.InvalidateProfile(ctx, user.ID)

	info := auth.ToUserInfo(user, true)
	return &info, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	// 1. 获取用户信息
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("获取用户信息失败: %w", err)
	}

	// 2. 校验旧密码
	if !security.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return fmt.Errorf("%w: 旧密码不正确", constant.ErrBadRequest)
	}
	if err := security.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", constant.ErrBadRequest, err.Error())
	}

	// 3. 哈希新密码并保存
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("生成新密码失败: %w", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}

	s.logger.Info("用户已修改密码", zap.Uint("user_id", user.ID))
	return nil
}

func (s *userService) GetUserProfileData(ctx context.Context, publicUserID string) (*model.UserProfileResponse, error) {
	userID, err := post.DecodeUserID(publicUserID)
	if err != nil {
		return nil, err
	}

	key := profileCacheKey(userID)
	var cached model.UserProfileResponse
	if hit, err := utility.GetJSON(ctx, s.cache, key, &cached); err != nil {
		s.logger.Warn("读取个人主页缓存失败", zap.String("key", key), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, _, err := s.postRepo.List(ctx, model.PostQueryOptions{OwnerID: userID, Page: 1, PageSize: RecentPostLimit})
	if err != nil {
		return nil, fmt.Errorf("查询最近帖子失败: %w", err)
	}

	recent := make([]model.PostResponse, 0, len(posts))
	for _, p := range posts {
		recent = append(recent, post.ToPostResponse(p, user))
	}
	profile := &model.UserProfileResponse{
		User:        auth.ToUserInfo(user, false),
		Stats:       *stats,
		RecentPosts: recent,
	}

	if err := utility.SetJSON(ctx, s.cache, key, profile, ProfileCacheTTL); err != nil {
		s.logger.Warn("写入个人主页缓存失败", zap.String("key", key), zap.Error(err))
	}
	return profile, nil
}

func (s *userService) InvalidateProfile(ctx context.Context, userIDs ...uint) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, profileCacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("清除个人主页缓存失败", zap.Strings("keys", keys), zap.Error(err))
	}
}
