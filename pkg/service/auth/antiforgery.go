package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"

	"github.com/google/uuid"
)

const (
	AntiforgeryCookieName = "XSRF-TOKEN"
	AntiforgeryHeaderName = "X-XSRF-TOKEN"
	AntiforgeryTTL        = 2 * time.Hour
)

// NewAntiforgeryToken 生成 "随机数.签名:过期时间" 形式的防伪令牌
func NewAntiforgeryToken(tokenSvc TokenService) (string, error) {
	nonce := uuid.NewString()
	signed, err := tokenSvc.GenerateSignedToken(nonce, AntiforgeryTTL)
	if err != nil {
		return "", fmt.Errorf("生成防伪令牌失败: %w", err)
	}
	return nonce + "." + signed, nil
}

// VerifyAntiforgeryToken 校验令牌的签名与有效期
func VerifyAntiforgeryToken(tokenSvc TokenService, token string) error {
	nonce, signed, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || signed == "" {
		return fmt.Errorf("%w: 防伪令牌格式无效", constant.ErrSignatureInvalid)
	}
	return tokenSvc.VerifySignedToken(nonce, signed)
}
