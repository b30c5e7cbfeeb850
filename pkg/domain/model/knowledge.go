/*
 * @Description: 知识库文章 (MongoDB)
 * @Author: 安知鱼
 * @Date: 2026-03-19 09:41:26
 * @LastEditTime: 2026-03-19 11:05:48
 * @LastEditors: 安知鱼
 */
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type KnowledgeArticle struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Slug      string             `bson:"slug" json:"slug"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Tags      []string           `bson:"tags" json:"tags"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

type UpsertKnowledgeRequest struct {
	Slug    string   `json:"slug" binding:"required,max=100"`
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}
