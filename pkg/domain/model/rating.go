package model

import "time"

// PostRating 是用户对帖子的点赞记录，(post_id, user_id) 唯一
type PostRating struct {
	ID        uint
	PostID    uint
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RaterRow 是点赞用户列表查询的结果行
type RaterRow struct {
	UserID   uint      `db:"user_id"`
	Nickname string    `db:"nickname"`
	Avatar   string    `db:"avatar"`
	RatedAt  time.Time `db:"rated_at"`
}

type RatingResponse struct {
	PostID      string `json:"postId"`
	Rated       bool   `json:"rated"`
	Created     bool   `json:"created"`
	RatingCount int    `json:"ratingCount"`
}

type RaterResponse struct {
	UserID   string    `json:"userId"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar"`
	RatedAt  time.Time `json:"ratedAt"`
}
