/*
 * @Description: AI 代理与聊天机器人相关的模型
 * @Author: 安知鱼
 * @Date: 2026-03-10 16:30:12
 * @LastEditTime: 2026-04-14 19:02:33
 * @LastEditors: 安知鱼
 */
package model

// ModerationResult 内容审核结果
type ModerationResult struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories"`
	Reason     string   `json:"reason"`
}

// Intent 是代理识别出的聊天意图
type Intent struct {
	Skill      string            `json:"skill"`
	Confidence float64           `json:"confidence"`
	Arguments  map[string]string `json:"arguments"`
}

// ChatTurn 是一轮对话
type ChatTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type ChatReference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ChatRequest struct {
	Message string     `json:"message" binding:"required"`
	History []ChatTurn `json:"history" binding:"omitempty,dive"`
}

type ChatReply struct {
	Skill       string          `json:"skill"`
	Reply       string          `json:"reply"`
	Suggestions []string        `json:"suggestions"`
	References  []ChatReference `json:"references"`
}

type RewriteRequest struct {
	Text  string `json:"text" binding:"required"`
	Style string `json:"style"`
}

type RewriteResponse struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

type ModerateRequest struct {
	Content string `json:"content" binding:"required"`
}

type SuggestTagsRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type SuggestTagsResponse struct {
	Tags []string `json:"tags"`
}
