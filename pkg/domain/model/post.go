/*
 * @Description: 帖子领域模型与 DTO
 * @Author: 安知鱼
 * @Date: 2026-03-05 09:40:02
 * @LastEditTime: 2026-04-08 11:16:37
 * @LastEditors: 安知鱼
 */
package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StringList 以 JSON 数组形式存储在单个文本列中
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return encodeJSONText([]string(l))
}

// TagNeedle 返回单个标签在 tags 列中的 JSON 字面量（含引号），供 LIKE 子串匹配使用
func TagNeedle(tag string) (string, error) {
	return encodeJSONText(tag)
}

// encodeJSONText 不转义 & < >，保证列内容与 TagNeedle 的编码一致
func encodeJSONText(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("无法将 %T 扫描为 StringList", value)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

type Post struct {
	ID          uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerID     uint
	Title       string
	Content     string
	ContentHTML string
	Tags        StringList
	RatingCount int
}

// PostQueryOptions 帖子列表查询条件
type PostQueryOptions struct {
	OwnerID  uint
	Keyword  string
	Tag      string
	Page     int
	PageSize int
}

// TopRatedPost 是热门帖子统计查询的结果行
type TopRatedPost struct {
	ID            uint      `db:"id"`
	Title         string    `db:"title"`
	RatingCount   int       `db:"rating_count"`
	CreatedAt     time.Time `db:"created_at"`
	OwnerID       uint      `db:"owner_id"`
	OwnerNickname string    `db:"owner_nickname"`
}

// --- 请求 DTO ---

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

type UpdatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

type ListPostsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Keyword  string `form:"keyword"`
	Tag      string `form:"tag"`
}

// --- 响应 DTO ---

type PostOwner struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type PostResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml"`
	Tags        []string  `json:"tags"`
	RatingCount int       `json:"ratingCount"`
	Owner       PostOwner `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TopRatedPostResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	RatingCount int       `json:"ratingCount"`
	Owner       PostOwner `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PostListResponse 是分页的帖子列表
type PostListResponse struct {
	List     []PostResponse `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
