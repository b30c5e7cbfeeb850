/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-03 18:38:27
 * @LastEditTime: 2026-03-03 18:38:34
 * @LastEditors: 安知鱼
 */
package auth

import "github.com/golang-jwt/jwt/v5"

// ClaimsKey 是用于在 gin.Context 中存储和检索用户 Claims 的键。
const ClaimsKey = "user_claims"

// Issuer 是本服务签发令牌时使用的 iss
const Issuer = "ibbs"

// 令牌类型，刷新令牌不能当作访问令牌使用
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// CustomClaims 定义了 JWT 的自定义 Claims，ID 均为公共 ID 字符串。
type CustomClaims struct {
	UserID      string `json:"user_id"`
	UserGroupID string `json:"user_group_id,omitempty"`
	TokenType   string `json:"token_type"`
	jwt.RegisteredClaims
}
