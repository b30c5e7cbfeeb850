/*
 * @Description: 公共 ID 生成和解码
 * @Author: 安知鱼
 * @Date: 2026-03-02 14:38:15
 * @LastEditTime: 2026-03-20 22:05:59
 * @LastEditors: 安知鱼
 */
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/sqids/sqids-go"
)

// DefaultAlphabet 是默认的字母表
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// EntityType 区分不同实体的公共 ID，防止用帖子 ID 去访问用户等串用
const (
	EntityTypeUser      uint64 = 1
	EntityTypePost      uint64 = 2
	EntityTypeBugReport uint64 = 3
	EntityTypeUserGroup uint64 = 4
)

// ErrInvalidPublicID 表示公共 ID 无法解码或实体类型不匹配
var ErrInvalidPublicID = errors.New("无效的公共ID")

var (
	mu           sync.RWMutex
	sqidsEncoder *sqids.Sqids
)

// GenerateRandomSeed 生成一个随机的 16 字节种子（32 字符的十六进制字符串）
func GenerateRandomSeed() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("生成随机种子失败: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// shuffleAlphabet 使用种子确定性地打乱字母表
func shuffleAlphabet(seed string) string {
	var seedInt int64
	for i, c := range seed {
		seedInt += int64(c) * int64(i+1)
	}
	r := mrand.New(mrand.NewSource(seedInt))

	alphabet := []rune(DefaultAlphabet)
	r.Shuffle(len(alphabet), func(i, j int) {
		alphabet[i], alphabet[j] = alphabet[j], alphabet[i]
	})
	return string(alphabet)
}

// InitSqidsEncoderWithSeed 使用种子初始化编码器，seed 为空时使用默认字母表
func InitSqidsEncoderWithSeed(seed string) error {
	alphabet := DefaultAlphabet
	if seed != "" {
		alphabet = shuffleAlphabet(seed)
	}

	s, err := sqids.New(sqids.Options{
		MinLength: 6,
		Alphabet:  alphabet,
	})
	if err != nil {
		return fmt.Errorf("初始化 Sqids 编码器失败: %w", err)
	}

	mu.Lock()
	sqidsEncoder = s
	mu.Unlock()
	return nil
}

func encoder() (*sqids.Sqids, error) {
	mu.RLock()
	defer mu.RUnlock()
	if sqidsEncoder == nil {
		return nil, fmt.Errorf("Sqids 编码器未初始化")
	}
	return sqidsEncoder, nil
}

// GeneratePublicID 把数据库 ID 与实体类型一起编码为公共 ID
func GeneratePublicID(dbID uint, entityType uint64) (string, error) {
	enc, err := encoder()
	if err != nil {
		return "", err
	}
	id, err := enc.Encode([]uint64{uint64(dbID), entityType})
	if err != nil {
		return "", fmt.Errorf("编码公共ID失败: %w", err)
	}
	return id, nil
}

// MustPublicID 用于 DTO 映射，编码器已初始化时不会失败
func MustPublicID(dbID uint, entityType uint64) string {
	id, err := GeneratePublicID(dbID, entityType)
	if err != nil {
		return ""
	}
	return id
}

// DecodePublicID 解码公共 ID，返回数据库 ID 和实体类型
func DecodePublicID(publicID string) (uint, uint64, error) {
	enc, err := encoder()
	if err != nil {
		return 0, 0, err
	}
	numbers := enc.Decode(publicID)
	if len(numbers) != 2 {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidPublicID, publicID)
	}
	return uint(numbers[0]), numbers[1], nil
}

// DecodeEntityID 解码公共 ID 并校验实体类型
func DecodeEntityID(publicID string, entityType uint64) (uint, error) {
	dbID, gotType, err := DecodePublicID(publicID)
	if err != nil {
		return 0, err
	}
	if gotType != entityType {
		return 0, fmt.Errorf("%w: '%s' 的实体类型不匹配", ErrInvalidPublicID, publicID)
	}
	return dbID, nil
}
