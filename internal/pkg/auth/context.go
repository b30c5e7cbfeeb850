package auth

import (
	"github.com/anzhiyu-c/ibbs/pkg/idgen"

	"github.com/gin-gonic/gin"
)

// GetClaims 返回 JWT 中间件写入上下文的 Claims
func GetClaims(c *gin.Context) (*CustomClaims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*CustomClaims)
	return claims, ok
}

// CurrentUserID 返回当前登录用户的数据库 ID，游客返回 false
func CurrentUserID(c *gin.Context) (uint, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return 0, false
	}
	userID, err := idgen.DecodeEntityID(claims.UserID, idgen.EntityTypeUser)
	if err != nil {
		return 0, false
	}
	return userID, true
}
