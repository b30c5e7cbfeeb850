/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-03 18:21:55
 * @LastEditTime: 2026-03-28 18:39:11
 * @LastEditors: 安知鱼
 */
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/idgen"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

var errEmptySecret = errors.New("JWT Secret 不能为空")

// GenerateToken 生成一个新的 Access Token
func GenerateToken(userID, userGroupID uint, secretKey []byte) (string, error) {
	if len(secretKey) == 0 {
		return "", errEmptySecret
	}

	publicUserID, err := idgen.GeneratePublicID(userID, idgen.EntityTypeUser)
	if err != nil {
		return "", fmt.Errorf("生成用户公共ID失败: %w", err)
	}
	publicGroupID, err := idgen.GeneratePublicID(userGroupID, idgen.EntityTypeUserGroup)
	if err != nil {
		return "", fmt.Errorf("生成用户组公共ID失败: %w", err)
	}

	return sign(CustomClaims{
		UserID:           publicUserID,
		UserGroupID:      publicGroupID,
		TokenType:        TokenTypeAccess,
		RegisteredClaims: registered(AccessTokenTTL),
	}, secretKey)
}

// GenerateRefreshToken 生成一个新的 Refresh Token
func GenerateRefreshToken(userID uint, secretKey []byte) (string, error) {
	if len(secretKey) == 0 {
		return "", errEmptySecret
	}

	publicUserID, err := idgen.GeneratePublicID(userID, idgen.EntityTypeUser)
	if err != nil {
		return "", fmt.Errorf("生成用户公共ID失败: %w", err)
	}

	return sign(CustomClaims{
		UserID:           publicUserID,
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: registered(RefreshTokenTTL),
	}, secretKey)
}

func registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    Issuer,
	}
}

func sign(claims CustomClaims, secretKey []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseToken 解析并校验令牌签名、有效期和签发者
func ParseToken(tokenStr string, secretKey []byte) (*CustomClaims, error) {
	if len(secretKey) == 0 {
		return nil, errEmptySecret
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, fmt.Errorf("解析token失败: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("无效或过期Token")
	}
	return claims, nil
}
