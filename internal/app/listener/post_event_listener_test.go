package listener

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/testutil"
	"github.com/anzhiyu-c/ibbs/pkg/constant"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type recorder struct {
	mu          sync.Mutex
	tagged      []uint
	invalidated []uint
}

func (r *recorder) DispatchPostTagging(postID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tagged = append(r.tagged, postID)
	return true
}

func (r *recorder) InvalidateProfile(_ context.Context, userIDs ...uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, userIDs...)
}

func (r *recorder) snapshot() ([]uint, []uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tagged := append([]uint(nil), r.tagged...)
	invalidated := append([]uint(nil), r.invalidated...)
	sort.Slice(invalidated, func(i, j int) bool { return invalidated[i] < invalidated[j] })
	return tagged, invalidated
}

func TestPostEventListener(t *testing.T) {
	// 内存数据库的连接在 t.Cleanup 中才关闭
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	db := testutil.NewDB(t)
	settings := db.NewSettings(t, nil)
	bus := event.NewEventBusWithSize(zap.NewNop(), 1, 16)
	rec := &recorder{}
	NewPostEventListener(bus, rec, rec, settings, zap.NewNop())

	bus.Publish(event.PostCreated, event.PostEvent{PostID: 1, OwnerID: 10})
	bus.Publish(event.PostCreated, event.PostEvent{PostID: 2, OwnerID: 10, HasTags: true})
	bus.Publish(event.PostUpdated, event.PostEvent{PostID: 3, OwnerID: 11})
	bus.Publish(event.PostDeleted, event.PostEvent{PostID: 4, OwnerID: 12})
	bus.Publish(event.RatingChanged, event.RatingEvent{PostID: 1, PostOwnerID: 10, RaterID: 20, Created: true})
	bus.Publish(event.BugReported, event.BugEvent{BugID: 1, Severity: constant.BugSeverityCritical})
	bus.Publish(event.PostCreated, "bad payload")
	bus.Shutdown()

	tagged, invalidated := rec.snapshot()
	assert.Equal(t, []uint{1, 3}, tagged)
	assert.Equal(t, []uint{10, 10, 10, 11, 12, 20}, invalidated)
}

func TestPostEventListener_AutoTagDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	settings := db.NewSettings(t, map[string]string{constant.KeyPostAutoTagEnable.String(): "false"})
	bus := event.NewEventBusWithSize(zap.NewNop(), 1, 16)
	rec := &recorder{}
	NewPostEventListener(bus, rec, rec, settings, zap.NewNop())

	bus.Publish(event.PostCreated, event.PostEvent{PostID: 1, OwnerID: 10})
	bus.Shutdown()

	assert.Eventually(t, func() bool {
		_, invalidated := rec.snapshot()
		return len(invalidated) == 1
	}, time.Second, 10*time.Millisecond)
	tagged, _ := rec.snapshot()
	assert.Empty(t, tagged)
}
