/*
 * @Description: 随机串
 * @Author: 安知鱼
 * @Date: 2026-03-03 12:25:50
 * @LastEditTime: 2026-03-03 12:25:56
 * @LastEditors: 安知鱼
 */
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateRandomString 生成指定长度的 URL 安全随机串
func GenerateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("随机串长度必须大于 0")
	}
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}
