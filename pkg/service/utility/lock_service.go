/*
 * @Description: 按键加锁
 * @Author: 安知鱼
 * @Date: 2026-03-09 01:41:43
 * @LastEditTime: 2026-04-06 10:13:11
 * @LastEditors: 安知鱼
 */
package utility

import "sync"

// KeyLocker 为每个字符串键提供独立的互斥锁，例如同一用户对同一帖子的评分。
// 无人持有的锁会被回收，map 不会无限增长。
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*refLock)}
}

// Lock 获取 key 的锁，并返回对应的解锁函数
func (l *KeyLocker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &refLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
