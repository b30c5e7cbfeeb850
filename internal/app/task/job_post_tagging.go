package task

import (
	"context"
	"errors"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"

	"go.uber.org/zap"
)

// PostTaggingJob 调用 AI 代理为没有标签的帖子生成标签
type PostTaggingJob struct {
	postSvc post.Service
	postID  uint
	logger  *zap.Logger
}

func NewPostTaggingJob(postSvc post.Service, postID uint, logger *zap.Logger) *PostTaggingJob {
	return &PostTaggingJob{postSvc: postSvc, postID: postID, logger: logger}
}

func (j *PostTaggingJob) Name() string {
	return "PostTaggingJob"
}

func (j *PostTaggingJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), agentJobTimeout)
	defer cancel()

	tags, err := j.postSvc.ApplyGeneratedTags(ctx, j.postID)
	switch {
	case err == nil:
		j.logger.Debug("自动标签任务完成", zap.Uint("post_id", j.postID), zap.Strings("tags", tags))
	case errors.Is(err, constant.ErrAgentDisabled):
		j.logger.Debug("AI 代理未启用，跳过自动标签", zap.Uint("post_id", j.postID))
	case errors.Is(err, constant.ErrNotFound):
		// 帖子在排队期间被删除
		j.logger.Debug("帖子已不存在，跳过自动标签", zap.Uint("post_id", j.postID))
	default:
		j.logger.Warn("自动标签任务失败", zap.Uint("post_id", j.postID), zap.Error(err))
	}
}
