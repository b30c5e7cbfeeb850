/*
 * @Description: 注册、登录与令牌刷新
 * @Author: 安知鱼
 * @Date: 2026-03-06 12:41:16
 * @LastEditTime: 2026-04-12 15:31:20
 * @LastEditors: 安知鱼
 */
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/pkg/security"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/imagecaptcha"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"go.uber.org/zap"
)

// AuthService 定义了所有认证相关的业务逻辑接口
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.UserInfoResponse, error)
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshTokenResponse, error)
}

type authService struct {
	userRepo   repository.UserRepository
	settingSvc setting.SettingService
	tokenSvc   TokenService
	captchaSvc imagecaptcha.ImageCaptchaService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	settingSvc setting.SettingService,
	tokenSvc TokenService,
	captchaSvc imagecaptcha.ImageCaptchaService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		settingSvc: settingSvc,
		tokenSvc:   tokenSvc,
		captchaSvc: captchaSvc,
		logger:     logger,
	}
}

// Register 第一个注册的用户成为管理员，其余为普通成员
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserInfoResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	nickname := strings.TrimSpace(req.Nickname)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: 邮箱格式不正确", constant.ErrBadRequest)
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrBadRequest, err)
	}

	if s.settingSvc.GetBool(constant.KeyRegisterCaptchaEnable.String()) {
		if err := s.captchaSvc.Verify(ctx, req.CaptchaID, req.Captcha); err != nil {
			return nil, err
		}
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, constant.ErrEmailExists
	} else if !errors.Is(err, constant.ErrNotFound) {
		return nil, fmt.Errorf("查询邮箱失败: %w", err)
	}

	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取用户总数失败: %w", err)
	}
	groupID := model.UserGroupMember
	if userCount == 0 {
		groupID = model.UserGroupAdmin
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	if nickname == "" {
		nickname = strings.Split(email, "@")[0]
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Nickname:     nickname,
		UserGroupID:  groupID,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	s.logger.Info("新用户注册", zap.Uint("user_id", user.ID), zap.Bool("admin", groupID == model.UserGroupAdmin))
	info := ToUserInfo(user, true)
	return &info, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, constant.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("数据库查询失败: %w", err)
	}
	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, constant.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, constant.ErrUserInactive
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	accessToken, refreshToken, expiresAt, err := s.tokenSvc.GenerateSessionTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         ToUserInfo(user, true),
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshTokenResponse, error) {
	accessToken, expiresAt, err := s.tokenSvc.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &model.RefreshTokenResponse{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

// ToUserInfo 把用户转换为接口 DTO，withPrivate 为 false 时隐藏邮箱和登录时间
func ToUserInfo(user *model.User, withPrivate bool) model.UserInfoResponse {
	info := model.UserInfoResponse{
		ID:        idgen.MustPublicID(user.ID, idgen.EntityTypeUser),
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		Bio:       user.Bio,
		IsAdmin:   user.IsAdmin(),
		CreatedAt: user.CreatedAt,
	}
	if withPrivate {
		info.Email = user.Email
		info.LastLoginAt = user.LastLoginAt
	}
	return info
}
