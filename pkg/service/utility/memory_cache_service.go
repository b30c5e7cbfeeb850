/*
 * @Description: 内存缓存服务实现（用于 Redis 不可用时的降级方案）
 * @Author: 安知鱼
 * @Date: 2026-03-04 16:02:10
 * @LastEditTime: 2026-04-03 20:45:43
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type cacheItem struct {
	value      string
	expiration time.Time
}

func (item cacheItem) isExpired(now time.Time) bool {
	return !item.expiration.IsZero() && now.After(item.expiration)
}

// memoryCacheService 是基于内存的缓存服务实现
type memoryCacheService struct {
	mu       sync.Mutex
	data     map[string]cacheItem
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCacheService 创建内存缓存服务，并每分钟清理一次过期数据
func NewMemoryCacheService() *memoryCacheService {
	return newMemoryCacheService(time.Minute)
}

func newMemoryCacheService(cleanupInterval time.Duration) *memoryCacheService {
	svc := &memoryCacheService{
		data:   make(map[string]cacheItem),
		ticker: time.NewTicker(cleanupInterval),
		done:   make(chan struct{}),
	}
	go svc.cleanupExpired()
	return svc
}

func (s *memoryCacheService) cleanupExpired() {
	for {
		select {
		case now := <-s.ticker.C:
			s.mu.Lock()
			for key, item := range s.data {
				if item.isExpired(now) {
					delete(s.data, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Stop 停止清理任务，可重复调用
func (s *memoryCacheService) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
}

func (s *memoryCacheService) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	item := cacheItem{value: fmt.Sprintf("%v", value)}
	if expiration > 0 {
		item.expiration = time.Now().Add(expiration)
	}
	s.mu.Lock()
	s.data[key] = item
	s.mu.Unlock()
	return nil
}

// load 必须在持有锁时调用
func (s *memoryCacheService) load(key string) (cacheItem, bool) {
	item, ok := s.data[key]
	if !ok {
		return cacheItem{}, false
	}
	if item.isExpired(time.Now()) {
		delete(s.data, key)
		return cacheItem{}, false
	}
	return item, true
}

func (s *memoryCacheService) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, _ := s.load(key)
	return item.value, nil
}

func (s *memoryCacheService) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.data, key)
	}
	s.mu.Unlock()
	return nil
}

// Increment 与 Redis INCR 一致：不存在时从 0 开始，保留原有过期时间
func (s *memoryCacheService) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.load(key)
	var current int64
	if ok {
		v, err := strconv.ParseInt(item.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("值不是整数: %s", key)
		}
		current = v
	}
	item.value = strconv.FormatInt(current+1, 10)
	s.data[key] = item
	return current + 1, nil
}

func (s *memoryCacheService) Expire(_ context.Context, key string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.load(key)
	if !ok {
		return nil
	}
	if expiration <= 0 {
		delete(s.data, key)
		return nil
	}
	item.expiration = time.Now().Add(expiration)
	s.data[key] = item
	return nil
}

func (s *memoryCacheService) GetDel(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.load(key)
	if ok {
		delete(s.data, key)
	}
	return item.value, nil
}
