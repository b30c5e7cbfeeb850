package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewEventBusWithSize(zap.NewNop(), 2, 16)

	var mu sync.Mutex
	var got []uint
	var wg sync.WaitGroup
	wg.Add(2)

	for i := 0; i < 2; i++ {
		bus.Subscribe(PostCreated, func(payload interface{}) {
			defer wg.Done()
			mu.Lock()
			got = append(got, payload.(PostEvent).PostID)
			mu.Unlock()
		})
	}

	bus.Publish(PostCreated, PostEvent{PostID: 7})
	wg.Wait()
	bus.Shutdown()

	assert.Equal(t, []uint{7, 7}, got)
}

func TestEventBus_HandlerPanicDoesNotStopWorker(t *testing.T) {
	bus := NewEventBusWithSize(zap.NewNop(), 1, 4)

	done := make(chan struct{})
	bus.Subscribe(BugReported, func(interface{}) { panic("boom") })
	bus.Subscribe(RatingChanged, func(interface{}) { close(done) })

	bus.Publish(BugReported, BugEvent{BugID: 1})
	bus.Publish(RatingChanged, RatingEvent{PostID: 1})
	<-done

	bus.Shutdown()
	// 重复关闭是安全的
	bus.Shutdown()
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBusWithSize(zap.NewNop(), 1, 1)

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	bus.Subscribe(PostUpdated, func(interface{}) {
		once.Do(func() { close(started) })
		<-block
	})

	bus.Publish(PostUpdated, PostEvent{PostID: 1})
	<-started
	// 唯一的 worker 正忙：第二个事件进入缓冲，第三个被丢弃而不是阻塞
	bus.Publish(PostUpdated, PostEvent{PostID: 2})
	bus.Publish(PostUpdated, PostEvent{PostID: 3})

	close(block)
	bus.Shutdown()
}
