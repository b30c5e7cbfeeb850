/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2026-04-10 10:03:36
 * @LastEditors: 安知鱼
 */
// internal/app/task/jobs.go
package task

import "time"

// Job 与 cron.Job 接口兼容。
type Job interface {
	Run()
	Name() string
}

// 每个任务单次执行的超时时间
const (
	defaultJobTimeout = 5 * time.Minute
	agentJobTimeout   = 2 * time.Minute
)

// FuncJob 把一个函数包装成带名字的任务
type FuncJob struct {
	name string
	fn   func()
}

func NewFuncJob(name string, fn func()) *FuncJob {
	return &FuncJob{name: name, fn: fn}
}

func (j *FuncJob) Name() string { return j.name }
func (j *FuncJob) Run()         { j.fn() }
