/*
 * @Description: 用户领域模型与 DTO
 * @Author: 安知鱼
 * @Date: 2026-03-05 09:12:44
 * @LastEditTime: 2026-04-03 15:20:18
 * @LastEditors: 安知鱼
 */
package model

import "time"

// 用户状态
const (
	UserStatusActive   = 1
	UserStatusInactive = 2
	UserStatusBanned   = 3
)

// 用户组，第一个注册的用户自动成为管理员
const (
	UserGroupAdmin  uint = 1
	UserGroupMember uint = 2
)

type User struct {
	ID           uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string
	PasswordHash string
	Nickname     string
	Avatar       string
	Bio          string
	UserGroupID  uint
	Status       int
	LastLoginAt  *time.Time
}

func (u *User) IsAdmin() bool {
	return u != nil && u.UserGroupID == UserGroupAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// UserStats 由原生 SQL 统计得到
type UserStats struct {
	PostCount       int64 `json:"postCount" db:"post_count"`
	RatingsReceived int64 `json:"ratingsReceived" db:"ratings_received"`
	RatingsGiven    int64 `json:"ratingsGiven" db:"ratings_given"`
}

// --- 请求 DTO ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Nickname  string `json:"nickname" binding:"omitempty,max=50"`
	CaptchaID string `json:"captchaId"`
	Captcha   string `json:"captcha"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateProfileRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,min=1,max=50"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=512"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// --- 响应 DTO ---

type UserInfoResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email,omitempty"`
	Nickname    string     `json:"nickname"`
	Avatar      string     `json:"avatar"`
	Bio         string     `json:"bio"`
	IsAdmin     bool       `json:"isAdmin"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type LoginResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	ExpiresAt    int64            `json:"expiresAt"`
	User         UserInfoResponse `json:"user"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// UserProfileResponse 是个人主页数据：资料、统计和最近的帖子
type UserProfileResponse struct {
	User        UserInfoResponse `json:"user"`
	Stats       UserStats        `json:"stats"`
	RecentPosts []PostResponse   `json:"recentPosts"`
}
