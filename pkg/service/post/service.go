/*
 * @Description: 帖子业务逻辑
 * @Author: 安知鱼
 * @Date: 2026-03-08 11:15:40
 * @LastEditTime: 2026-04-17 10:26:14
 * @LastEditors: 安知鱼
 */
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/parser"
	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"go.uber.org/zap"
)

const (
	MaxTitleRunes   = 200
	MaxContentRunes = 20000
	MaxTopRated     = 50
)

type Service interface {
	AddNewPost(ctx context.Context, ownerID uint, req *model.CreatePostRequest) (*model.PostResponse, error)
	GetPost(ctx context.Context, publicID string) (*model.PostResponse, error)
	ListPosts(ctx context.Context, req *model.ListPostsRequest) (*model.PostListResponse, error)
	ListUserPosts(ctx context.Context, publicUserID string, page, pageSize int) (*model.PostListResponse, error)
	ListTopRated(ctx context.Context, limit int) ([]model.TopRatedPostResponse, error)
	UpdatePost(ctx context.Context, userID uint, publicID string, req *model.UpdatePostRequest) (*model.PostResponse, error)
	DeletePost(ctx context.Context, userID uint, publicID string) error
	// ApplyGeneratedTags 为没有标签的帖子调用 AI 生成标签
	ApplyGeneratedTags(ctx context.Context, postID uint) ([]string, error)
}

type service struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	txManager  repository.TransactionManager
	aiSvc      ai.Service
	settingSvc setting.SettingService
	bus        *event.EventBus
	logger     *zap.Logger
}

func NewService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	aiSvc ai.Service,
	settingSvc setting.SettingService,
	bus *event.EventBus,
	logger *zap.Logger,
) Service {
	return &service{
		postRepo:   postRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		aiSvc:      aiSvc,
		settingSvc: settingSvc,
		bus:        bus,
		logger:     logger,
	}
}

// DecodePostID 解码帖子公共 ID，无效 ID 视为不存在
func DecodePostID(publicID string) (uint, error) {
	id, err := idgen.DecodeEntityID(strings.TrimSpace(publicID), idgen.EntityTypePost)
	if err != nil {
		return 0, fmt.Errorf("%w: 帖子不存在", constant.ErrNotFound)
	}
	return id, nil
}

// DecodeUserID 解码用户公共 ID，无效 ID 视为不存在
func DecodeUserID(publicID string) (uint, error) {
	id, err := idgen.DecodeEntityID(strings.TrimSpace(publicID), idgen.EntityTypeUser)
	if err != nil {
		return 0, fmt.Errorf("%w: 用户不存在", constant.ErrNotFound)
	}
	return id, nil
}

// draft 是校验和渲染后待写入的内容
type draft struct {
	title   string
	content string
	html    string
	tags    []string
}

func (s *service) prepare(ctx context.Context, title, content string, tags []string) (*draft, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if n := utils.RuneLen(title); n == 0 || n > MaxTitleRunes {
		return nil, fmt.Errorf("%w: 标题长度需在 1 到 %d 字之间", constant.ErrBadRequest, MaxTitleRunes)
	}
	if n := utils.RuneLen(content); n == 0 || n > MaxContentRunes {
		return nil, fmt.Errorf("%w: 正文长度需在 1 到 %d 字之间", constant.ErrBadRequest, MaxContentRunes)
	}
	normalized, err := ValidateTags(tags)
	if err != nil {
		return nil, err
	}

	rendered, err := parser.Render(content)
	if err != nil {
		return nil, err
	}

	if s.settingSvc.GetBool(constant.KeyPostModerationEnable.String()) {
		res, err := s.aiSvc.Moderate(ctx, title+"\n\n"+rendered.Text)
		switch {
		case err != nil:
			// 审核服务不可用时放行
			s.logger.Warn("内容审核失败，跳过审核", zap.Error(err))
		case res.Flagged:
			reason := res.Reason
			if reason == "" {
				reason = strings.Join(res.Categories, ", ")
			}
			return nil, fmt.Errorf("%w: %s", constant.ErrContentRejected, reason)
		}
	}

	return &draft{title: title, content: content, html: rendered.HTML, tags: normalized}, nil
}

// ValidateTags 规范化用户填写的标签，超过数量或长度限制时报错
func ValidateTags(tags []string) ([]string, error) {
	normalized := utils.NormalizeTags(tags)
	if len(normalized) > ai.MaxTags {
		return nil, fmt.Errorf("%w: 标签最多 %d 个", constant.ErrBadRequest, ai.MaxTags)
	}
	for _, tag := range normalized {
		if utils.RuneLen(tag) > ai.MaxTagLength {
			return nil, fmt.Errorf("%w: 标签 %q 超过 %d 个字符", constant.ErrBadRequest, tag, ai.MaxTagLength)
		}
	}
	return normalized, nil
}

func (s *service) AddNewPost(ctx context.Context, ownerID uint, req *model.CreatePostRequest) (*model.PostResponse, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, fmt.Errorf("%w: 发帖用户不存在", constant.ErrUnauthorized)
		}
		return nil, err
	}
	if !owner.IsActive() {
		return nil, constant.ErrUserInactive
	}

	d, err := s.prepare(ctx, req.Title, req.Content, req.Tags)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		OwnerID:     owner.ID,
		Title:       d.title,
		Content:     d.content,
		ContentHTML: d.html,
		Tags:        d.tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("创建帖子失败: %w", err)
	}

	s.logger.Info("新帖子已发布", zap.Uint("post_id", post.ID), zap.Uint("owner_id", owner.ID))
	s.bus.Publish(event.PostCreated, event.PostEvent{PostID: post.ID, OwnerID: owner.ID, HasTags: len(post.Tags) > 0})

	resp := ToPostResponse(post, owner)
	return &resp, nil
}

func (s *service) GetPost(ctx context.Context, publicID string) (*model.PostResponse, error) {
	id, err := DecodePostID(publicID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owners, err := s.userRepo.FindByIDs(ctx, []uint{post.OwnerID})
	if err != nil {
		return nil, err
	}
	resp := ToPostResponse(post, owners[post.OwnerID])
	return &resp, nil
}

func (s *service) ListPosts(ctx context.Context, req *model.ListPostsRequest) (*model.PostListResponse, error) {
	page, pageSize := utils.NormalizePage(req.Page, req.PageSize)
	return s.list(ctx, model.PostQueryOptions{
		Keyword:  req.Keyword,
		Tag:      req.Tag,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *service) ListUserPosts(ctx context.Context, publicUserID string, page, pageSize int) (*model.PostListResponse, error) {
	userID, err := DecodeUserID(publicUserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	page, pageSize = utils.NormalizePage(page, pageSize)
	return s.list(ctx, model.PostQueryOptions{OwnerID: userID, Page: page, PageSize: pageSize})
}

func (s *service) list(ctx context.Context, opts model.PostQueryOptions) (*model.PostListResponse, error) {
	posts, total, err := s.postRepo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	list, err := s.toResponses(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &model.PostListResponse{List: list, Total: total, Page: opts.Page, PageSize: opts.PageSize}, nil
}

func (s *service) toResponses(ctx context.Context, posts []*model.Post) ([]model.PostResponse, error) {
	ownerIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		ownerIDs = append(ownerIDs, p.OwnerID)
	}
	owners, err := s.userRepo.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	out := make([]model.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, ToPostResponse(p, owners[p.OwnerID]))
	}
	return out, nil
}

func (s *service) ListTopRated(ctx context.Context, limit int) ([]model.TopRatedPostResponse, error) {
	if limit <= 0 {
		limit = utils.DefaultPageSize
	}
	if limit > MaxTopRated {
		limit = MaxTopRated
	}
	rows, err := s.postRepo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.TopRatedPostResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.TopRatedPostResponse{
			ID:          idgen.MustPublicID(r.ID, idgen.EntityTypePost),
			Title:       r.Title,
			RatingCount: r.RatingCount,
			CreatedAt:   r.CreatedAt,
			Owner: model.PostOwner{
				ID:       idgen.MustPublicID(r.OwnerID, idgen.EntityTypeUser),
				Nickname: r.OwnerNickname,
			},
		})
	}
	return out, nil
}

// authorize 加载帖子并确认 userID 是作者或管理员
func (s *service) authorize(ctx context.Context, userID uint, publicID string) (*model.Post, *model.User, error) {
	id, err := DecodePostID(publicID)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, nil, constant.ErrUnauthorized
		}
		return nil, nil, err
	}
	if post.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, nil, fmt.Errorf("%w: 只有作者或管理员可以修改帖子", constant.ErrForbidden)
	}
	return post, actor, nil
}

func (s *service) UpdatePost(ctx context.Context, userID uint, publicID string, req *model.UpdatePostRequest) (*model.PostResponse, error) {
	post, actor, err := s.authorize(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	d, err := s.prepare(ctx, req.Title, req.Content, req.Tags)
	if err != nil {
		return nil, err
	}

	post.Title = d.title
	post.Content = d.content
	post.ContentHTML = d.html
	post.Tags = d.tags
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("更新帖子失败: %w", err)
	}

	s.logger.Info("帖子已更新", zap.Uint("post_id", post.ID), zap.Uint("actor_id", actor.ID))
	s.bus.Publish(event.PostUpdated, event.PostEvent{PostID: post.ID, OwnerID: post.OwnerID, HasTags: len(post.Tags) > 0})

	owner := actor
	if owner.ID != post.OwnerID {
		owners, err := s.userRepo.FindByIDs(ctx, []uint{post.OwnerID})
		if err != nil {
			return nil, err
		}
		owner = owners[post.OwnerID]
	}
	resp := ToPostResponse(post, owner)
	return &resp, nil
}

// DeletePost 在同一事务中删除帖子及其全部点赞
func (s *service) DeletePost(ctx context.Context, userID uint, publicID string) error {
	post, actor, err := s.authorize(ctx, userID, publicID)
	if err != nil {
		return err
	}

	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Rating.DeleteByPost(ctx, post.ID); err != nil {
			return fmt.Errorf("删除帖子点赞失败: %w", err)
		}
		return repos.Post.Delete(ctx, post.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("帖子已删除", zap.Uint("post_id", post.ID), zap.Uint("actor_id", actor.ID))
	s.bus.Publish(event.PostDeleted, event.PostEvent{PostID: post.ID, OwnerID: post.OwnerID})
	return nil
}

func (s *service) ApplyGeneratedTags(ctx context.Context, postID uint) ([]string, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(post.Tags) > 0 {
		return post.Tags, nil
	}

	tags, err := s.aiSvc.SuggestTags(ctx, post.Title, parser.StripHTML(post.ContentHTML))
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	if err := s.postRepo.UpdateTags(ctx, post.ID, tags); err != nil {
		return nil, fmt.Errorf("保存自动标签失败: %w", err)
	}
	s.logger.Info("已为帖子生成标签", zap.Uint("post_id", post.ID), zap.Strings("tags", tags))
	return tags, nil
}

// ToPostResponse 把帖子转换为接口 DTO，owner 可以为 nil
func ToPostResponse(p *model.Post, owner *model.User) model.PostResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	resp := model.PostResponse{
		ID:          idgen.MustPublicID(p.ID, idgen.EntityTypePost),
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: p.ContentHTML,
		Tags:        tags,
		RatingCount: p.RatingCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Owner:       model.PostOwner{ID: idgen.MustPublicID(p.OwnerID, idgen.EntityTypeUser)},
	}
	if owner != nil {
		resp.Owner.Nickname = owner.Nickname
		resp.Owner.Avatar = owner.Avatar
	}
	return resp
}
