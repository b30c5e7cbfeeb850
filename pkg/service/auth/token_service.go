/*
 * @Description: 会话令牌与 HMAC 签名令牌
 * @Author: 安知鱼
 * @Date: 2026-03-06 10:22:31
 * @LastEditTime: 2026-04-12 15:06:44
 * @LastEditors: 安知鱼
 */
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"
)

var errSecretMissing = errors.New("JWT_SECRET 未从数据库加载")

type TokenService interface {
	GenerateSessionTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, expiresAt int64, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	// GenerateSignedToken 返回 "签名:过期时间" 形式的令牌，identifier 不包含在令牌中
	GenerateSignedToken(identifier string, duration time.Duration) (string, error)
	VerifySignedToken(identifier, sign string) error
	ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error)
}

type tokenService struct {
	userRepo   repository.UserRepository
	settingSvc setting.SettingService
}

func NewTokenService(userRepo repository.UserRepository, settingSvc setting.SettingService) TokenService {
	return &tokenService{userRepo: userRepo, settingSvc: settingSvc}
}

func (s *tokenService) secret() ([]byte, error) {
	jwtSecret := s.settingSvc.Get(constant.KeyJWTSecret.String())
	if jwtSecret == "" {
		return nil, errSecretMissing
	}
	return []byte(jwtSecret), nil
}

func (s *tokenService) GenerateSessionTokens(ctx context.Context, user *model.User) (string, string, int64, error) {
	secret, err := s.secret()
	if err != nil {
		return "", "", 0, err
	}
	accessToken, err := auth.GenerateToken(user.ID, user.UserGroupID, secret)
	if err != nil {
		return "", "", 0, err
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, secret)
	if err != nil {
		return "", "", 0, err
	}
	return accessToken, refreshToken, time.Now().Add(auth.AccessTokenTTL).UnixMilli(), nil
}

func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, int64, error) {
	secret, err := s.secret()
	if err != nil {
		return "", 0, err
	}

	claims, err := auth.ParseToken(refreshToken, secret)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", constant.ErrInvalidToken, err)
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return "", 0, fmt.Errorf("%w: 不是刷新令牌", constant.ErrInvalidToken)
	}

	userID, err := idgen.DecodeEntityID(claims.UserID, idgen.EntityTypeUser)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", constant.ErrInvalidToken, err)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return "", 0, constant.ErrInvalidToken
		}
		return "", 0, err
	}
	if !user.IsActive() {
		return "", 0, constant.ErrUserInactive
	}

	accessToken, err := auth.GenerateToken(user.ID, user.UserGroupID, secret)
	if err != nil {
		return "", 0, err
	}
	return accessToken, time.Now().Add(auth.AccessTokenTTL).UnixMilli(), nil
}

func (s *tokenService) GenerateSignedToken(identifier string, duration time.Duration) (string, error) {
	secret, err := s.secret()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(duration).Unix()
	signature := signHMAC(secret, identifier, expiry)
	return fmt.Sprintf("%s:%d", base64.RawURLEncoding.EncodeToString(signature), expiry), nil
}

func (s *tokenService) VerifySignedToken(identifier, sign string) error {
	secret, err := s.secret()
	if err != nil {
		return err
	}

	encoded, expiryStr, ok := strings.Cut(sign, ":")
	if !ok {
		return fmt.Errorf("%w: 令牌格式无效", constant.ErrSignatureInvalid)
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: 过期时间格式无效", constant.ErrSignatureInvalid)
	}
	if time.Now().Unix() > expiry {
		return fmt.Errorf("%w: 令牌已过期", constant.ErrSignatureInvalid)
	}

	got, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: 签名解码失败", constant.ErrSignatureInvalid)
	}
	if !hmac.Equal(got, signHMAC(secret, identifier, expiry)) {
		return constant.ErrSignatureInvalid
	}
	return nil
}

// ParseAccessToken 只接受访问令牌，刷新令牌会被拒绝
func (s *tokenService) ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error) {
	secret, err := s.secret()
	if err != nil {
		return nil, err
	}
	claims, err := auth.ParseToken(accessToken, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrInvalidToken, err)
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, fmt.Errorf("%w: 不是访问令牌", constant.ErrInvalidToken)
	}
	return claims, nil
}

func signHMAC(secret []byte, identifier string, expiry int64) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(fmt.Sprintf("%s:%d", identifier, expiry)))
	return h.Sum(nil)
}
