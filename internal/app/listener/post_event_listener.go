/*
 * @Description: 监听帖子、点赞和缺陷反馈事件，派发后台任务并清理缓存。
 * @Author: 安知鱼
 * @Date: 2025-07-18 17:30:00
 * @LastEditTime: 2026-04-11 14:01:58
 * @LastEditors: 安知鱼
 */
package listener

import (
	"context"

	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"go.uber.org/zap"
)

// TaggingDispatcher 把自动标签任务放进后台队列，由 task.Broker 实现
type TaggingDispatcher interface {
	DispatchPostTagging(postID uint) bool
}

// ProfileInvalidator 清除个人主页缓存，由 user.UserService 实现
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userIDs ...uint)
}

// PostEventListener 是帖子相关事件的唯一入口。
type PostEventListener struct {
	tagger     TaggingDispatcher
	profiles   ProfileInvalidator
	settingSvc setting.SettingService
	logger     *zap.Logger
}

// NewPostEventListener 创建监听器并订阅所有相关主题。
func NewPostEventListener(
	bus *event.EventBus,
	tagger TaggingDispatcher,
	profiles ProfileInvalidator,
	settingSvc setting.SettingService,
	logger *zap.Logger,
) *PostEventListener {
	l := &PostEventListener{
		tagger:     tagger,
		profiles:   profiles,
		settingSvc: settingSvc,
		logger:     logger.Named("listener"),
	}
	bus.Subscribe(event.PostCreated, l.handlePostChanged)
	bus.Subscribe(event.PostUpdated, l.handlePostChanged)
	bus.Subscribe(event.PostDeleted, l.handlePostDeleted)
	bus.Subscribe(event.RatingChanged, l.handleRatingChanged)
	bus.Subscribe(event.BugReported, l.handleBugReported)
	return l
}

func (l *PostEventListener) handlePostChanged(payload interface{}) {
	ev, ok := payload.(event.PostEvent)
	if !ok {
		l.logger.Error("帖子事件负载类型不正确")
		return
	}
	l.profiles.InvalidateProfile(context.Background(), ev.OwnerID)

	if ev.HasTags || !l.settingSvc.GetBool(constant.KeyPostAutoTagEnable.String()) {
		return
	}
	l.tagger.DispatchPostTagging(ev.PostID)
}

func (l *PostEventListener) handlePostDeleted(payload interface{}) {
	ev, ok := payload.(event.PostEvent)
	if !ok {
		l.logger.Error("帖子删除事件负载类型不正确")
		return
	}
	// 被删帖子的点赞者统计也会变化，这里只能清理作者的缓存，其余等待过期
	l.profiles.InvalidateProfile(context.Background(), ev.OwnerID)
}

func (l *PostEventListener) handleRatingChanged(payload interface{}) {
	ev, ok := payload.(event.RatingEvent)
	if !ok {
		l.logger.Error("点赞事件负载类型不正确")
		return
	}
	l.profiles.InvalidateProfile(context.Background(), ev.PostOwnerID, ev.RaterID)
}

func (l *PostEventListener) handleBugReported(payload interface{}) {
	ev, ok := payload.(event.BugEvent)
	if !ok {
		l.logger.Error("缺陷事件负载类型不正确")
		return
	}
	fields := []zap.Field{zap.Uint("bug_id", ev.BugID), zap.String("severity", ev.Severity)}
	if ev.Severity == constant.BugSeverityCritical || ev.Severity == constant.BugSeverityHigh {
		l.logger.Warn("收到高优先级缺陷反馈", fields...)
		return
	}
	l.logger.Info("收到缺陷反馈", fields...)
}
