/*
 * @Description: 一个带固定Worker池的异步事件总线
 * @Author: 安知鱼
 * @Date: 2026-03-05 17:56:12
 * @LastEditTime: 2026-04-09 20:14:05
 * @LastEditors: 安知鱼
 */
package event

import (
	"sync"

	"go.uber.org/zap"
)

// Topic 事件主题
type Topic string

const (
	PostCreated   Topic = "post:created"
	PostUpdated   Topic = "post:updated"
	PostDeleted   Topic = "post:deleted"
	RatingChanged Topic = "rating:changed"
	BugReported   Topic = "bug:reported"
)

// PostEvent 是帖子创建/更新/删除事件的载荷
type PostEvent struct {
	PostID  uint
	OwnerID uint
	HasTags bool
}

// RatingEvent 是点赞变化事件的载荷
type RatingEvent struct {
	PostID      uint
	PostOwnerID uint
	RaterID     uint
	Created     bool
	Removed     bool
}

// BugEvent 是缺陷提交事件的载荷
type BugEvent struct {
	BugID      uint
	ReporterID uint
	Severity   string
}

// Handler 事件处理器函数类型
type Handler func(payload interface{})

// Event 是在通道中传递的事件结构
type Event struct {
	Topic   Topic
	Payload interface{}
}

// 定义Worker池和通道的配置
const (
	DefaultWorkerCount = 4
	DefaultChannelSize = 1024
)

// EventBus 实现了基于Worker池的异步事件总线
type EventBus struct {
	mu        sync.RWMutex
	handlers  map[Topic][]Handler
	eventChan chan Event
	wg        sync.WaitGroup
	closeOnce sync.Once
	logger    *zap.Logger
}

// NewEventBus 创建并启动一个新的事件总线
func NewEventBus(logger *zap.Logger) *EventBus {
	return NewEventBusWithSize(logger, DefaultWorkerCount, DefaultChannelSize)
}

// NewEventBusWithSize 使用指定的 worker 数量和通道容量创建事件总线
func NewEventBusWithSize(logger *zap.Logger, workers, size int) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	if size < 0 {
		size = DefaultChannelSize
	}
	bus := &EventBus{
		handlers:  make(map[Topic][]Handler),
		eventChan: make(chan Event, size),
		logger:    logger.Named("eventbus"),
	}
	for i := 0; i < workers; i++ {
		bus.wg.Add(1)
		go bus.worker(i + 1)
	}
	return bus
}

func (b *EventBus) worker(workerID int) {
	defer b.wg.Done()
	for ev := range b.eventChan {
		b.mu.RLock()
		handlers := append([]Handler(nil), b.handlers[ev.Topic]...)
		b.mu.RUnlock()

		for _, handler := range handlers {
			b.dispatch(workerID, ev, handler)
		}
	}
}

// dispatch 执行单个处理器，处理器 panic 不会拖垮 worker
func (b *EventBus) dispatch(workerID int, ev Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("事件处理器发生 panic",
				zap.Int("worker", workerID),
				zap.String("topic", string(ev.Topic)),
				zap.Any("panic", r))
		}
	}()
	handler(ev.Payload)
}

// Subscribe 订阅一个事件
func (b *EventBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish 非阻塞地发布事件，通道已满时丢弃并记录警告
func (b *EventBus) Publish(topic Topic, payload interface{}) {
	select {
	case b.eventChan <- Event{Topic: topic, Payload: payload}:
	default:
		b.logger.Warn("事件通道已满，丢弃事件", zap.String("topic", string(topic)))
	}
}

// Shutdown 关闭通道并等待所有 worker 处理完剩余事件
func (b *EventBus) Shutdown() {
	b.closeOnce.Do(func() {
		close(b.eventChan)
		b.wg.Wait()
		b.logger.Info("事件总线已关闭")
	})
}
