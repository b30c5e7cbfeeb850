/*
 * @Description: 后台任务协调者：cron 周期任务 + 异步任务队列
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2026-04-10 11:40:21
 * @LastEditors: 安知鱼
 */
// internal/app/task/broker.go
package task

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"
	"github.com/anzhiyu-c/ibbs/pkg/service/rating"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 周期任务的 cron 表达式（带秒）
const (
	RatingReconcileSchedule = "0 0 * * * *"
	LookupWarmupSchedule    = "0 */10 * * * *"

	DefaultQueueSize = 1000
)

// Broker 是整个后台任务模块的核心协调者。
type Broker struct {
	cron     *cron.Cron
	logger   *zap.Logger
	jobQueue chan Job
	workers  int
	wg       sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	postSvc   post.Service
	ratingSvc rating.Service
	lookupSvc lookup.Service
}

// NewBroker 是 Broker 的构造函数，worker 池在构造时启动。
func NewBroker(
	postSvc post.Service,
	ratingSvc rating.Service,
	lookupSvc lookup.Service,
	logger *zap.Logger,
) *Broker {
	return NewBrokerWithWorkers(postSvc, ratingSvc, lookupSvc, logger, runtime.NumCPU(), DefaultQueueSize)
}

// NewBrokerWithWorkers 使用指定的 worker 数量和队列容量创建 Broker
func NewBrokerWithWorkers(
	postSvc post.Service,
	ratingSvc rating.Service,
	lookupSvc lookup.Service,
	logger *zap.Logger,
	workers, queueSize int,
) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("task_broker")
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(newCronLogger(logger)),
		),
	)

	broker := &Broker{
		cron:      c,
		logger:    logger,
		jobQueue:  make(chan Job, queueSize),
		workers:   workers,
		postSvc:   postSvc,
		ratingSvc: ratingSvc,
		lookupSvc: lookupSvc,
	}
	broker.startWorkerPool()
	return broker
}

// startWorkerPool 启动固定数量的 worker goroutine 来处理任务。
func (b *Broker) startWorkerPool() {
	b.logger.Info("启动任务 worker 池", zap.Int("concurrency", b.workers))

	chain := cron.NewChain(
		NewPanicRecoveryWrapper(b.logger),
		NewLoggingWrapper(b.logger),
	)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go func(workerID int) {
			defer b.wg.Done()
			for job := range b.jobQueue {
				b.logger.Debug("worker 取到任务", zap.Int("worker_id", workerID), zap.String("job_name", job.Name()))
				chain.Then(job).Run()
			}
		}(i + 1)
	}
}

// RegisterCronJobs 注册所有周期性任务。
func (b *Broker) RegisterCronJobs() error {
	jobs := []struct {
		spec string
		job  Job
	}{
		{RatingReconcileSchedule, NewRatingReconcileJob(b.ratingSvc, b.logger)},
		{LookupWarmupSchedule, NewLookupWarmupJob(b.lookupSvc, b.logger)},
	}
	for _, item := range jobs {
		if _, err := b.cron.AddJob(item.spec, item.job); err != nil {
			return fmt.Errorf("注册周期任务 '%s' 失败: %w", item.job.Name(), err)
		}
		b.logger.Info("已注册周期任务", zap.String("job_name", item.job.Name()), zap.String("schedule", item.spec))
	}
	return nil
}

// Dispatch 将任务发送到队列中，队列已满或已停止时丢弃并返回 false。
func (b *Broker) Dispatch(job Job) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		b.logger.Warn("任务中心已停止，丢弃任务", zap.String("job_name", job.Name()))
		return false
	}
	select {
	case b.jobQueue <- job:
		return true
	default:
		b.logger.Warn("任务队列已满，丢弃任务", zap.String("job_name", job.Name()))
		return false
	}
}

// DispatchPostTagging 派发一个帖子自动标签任务。
func (b *Broker) DispatchPostTagging(postID uint) bool {
	ok := b.Dispatch(NewPostTaggingJob(b.postSvc, postID, b.logger))
	if ok {
		b.logger.Debug("已加入自动标签任务", zap.Uint("post_id", postID))
	}
	return ok
}

// Start 启动 cron 调度器，并立即预热一次参考数据。
func (b *Broker) Start() {
	b.cron.Start()
	b.Dispatch(NewLookupWarmupJob(b.lookupSvc, b.logger))
	b.logger.Info("任务中心已启动")
}

// Stop 优雅地停止 cron 调度器，并等待队列中的任务处理完。
func (b *Broker) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	b.mu.Unlock()

	ctx := b.cron.Stop()
	<-ctx.Done()
	close(b.jobQueue)
	b.wg.Wait()
	b.logger.Info("任务中心已停止")
}
