package task

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"

	"go.uber.org/zap"
)

// LookupWarmupJob 提前把参考数据写入缓存，避免缓存过期后的首个请求打到数据库
type LookupWarmupJob struct {
	lookupSvc lookup.Service
	logger    *zap.Logger
}

func NewLookupWarmupJob(lookupSvc lookup.Service, logger *zap.Logger) *LookupWarmupJob {
	return &LookupWarmupJob{lookupSvc: lookupSvc, logger: logger}
}

func (j *LookupWarmupJob) Name() string {
	return "LookupWarmupJob"
}

func (j *LookupWarmupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	if err := j.lookupSvc.Warmup(ctx); err != nil {
		j.logger.Warn("预热参考数据缓存失败", zap.String("job_name", j.Name()), zap.Error(err))
	}
}
