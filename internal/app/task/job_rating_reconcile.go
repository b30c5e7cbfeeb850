package task

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/service/rating"

	"go.uber.org/zap"
)

// RatingReconcileJob 用点赞表重新计算所有帖子的 rating_count
type RatingReconcileJob struct {
	ratingSvc rating.Service
	logger    *zap.Logger
}

func NewRatingReconcileJob(ratingSvc rating.Service, logger *zap.Logger) *RatingReconcileJob {
	return &RatingReconcileJob{ratingSvc: ratingSvc, logger: logger}
}

func (j *RatingReconcileJob) Name() string {
	return "RatingReconcileJob"
}

func (j *RatingReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	fixed, err := j.ratingSvc.Reconcile(ctx)
	if err != nil {
		j.logger.Error("校正点赞计数失败", zap.String("job_name", j.Name()), zap.Error(err))
		return
	}
	j.logger.Debug("点赞计数校正完成", zap.Int64("fixed", fixed))
}
