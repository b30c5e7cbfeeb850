/*
 * @Description: 知识库仓储 (MongoDB)
 * @Author: 安知鱼
 * @Date: 2026-03-19 11:20:37
 * @LastEditTime: 2026-04-01 09:12:50
 * @LastEditors: 安知鱼
 */
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionKnowledge 是知识库文章所在的集合
const CollectionKnowledge = "knowledge_articles"

type knowledgeRepo struct {
	coll *mongo.Collection
}

// NewKnowledgeRepository 创建 MongoDB 知识库仓储，并确保 slug 唯一索引存在
func NewKnowledgeRepository(ctx context.Context, db *mongo.Database) (repository.KnowledgeRepository, error) {
	coll := db.Collection(CollectionKnowledge)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("创建知识库索引失败: %w", err)
	}
	return &knowledgeRepo{coll: coll}, nil
}

// Search 在标题、正文和标签中做不区分大小写的匹配
func (r *knowledgeRepo) Search(ctx context.Context, query string, limit int) ([]*model.KnowledgeArticle, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"content": pattern},
		bson.M{"tags": pattern},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *knowledgeRepo) List(ctx context.Context) ([]*model.KnowledgeArticle, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
}

func (r *knowledgeRepo) Upsert(ctx context.Context, article *model.KnowledgeArticle) error {
	article.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"slug":       article.Slug,
		"title":      article.Title,
		"content":    article.Content,
		"tags":       article.Tags,
		"updated_at": article.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"slug": article.Slug}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("保存知识库文章失败: %w", err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		article.ID = id
	}
	return nil
}

func (r *knowledgeRepo) Delete(ctx context.Context, slug string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return fmt.Errorf("删除知识库文章失败: %w", err)
	}
	if res.DeletedCount == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (r *knowledgeRepo) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*model.KnowledgeArticle, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("查询知识库失败: %w", err)
	}
	defer cursor.Close(ctx)

	articles := make([]*model.KnowledgeArticle, 0)
	if err := cursor.All(ctx, &articles); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return articles, nil
		}
		return nil, fmt.Errorf("解码知识库文章失败: %w", err)
	}
	return articles, nil
}
