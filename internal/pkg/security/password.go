/*
 * @Description: 密码哈希与强度校验
 * @Author: 安知鱼
 * @Date: 2026-03-03 13:06:01
 * @LastEditTime: 2026-03-03 13:57:28
 * @LastEditors: 安知鱼
 */
package security

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt 只使用前 72 字节
	MaxPasswordLength = 72
)

// ValidatePassword 检查密码长度
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("密码长度不能少于 %d 位", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("密码长度不能超过 %d 字节", MaxPasswordLength)
	}
	return nil
}

// HashPassword 对密码进行哈希处理
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("密码哈希失败: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash 验证密码哈希
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
