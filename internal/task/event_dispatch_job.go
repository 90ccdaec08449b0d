package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/event"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
)

// EventDispatchJob 事件分发任务
type EventDispatchJob struct {
	dispatcher *event.Dispatcher
	interval   time.Duration
}

// NewEventDispatchJob 创建事件分发任务
func NewEventDispatchJob(dispatcher *event.Dispatcher, interval time.Duration) *EventDispatchJob {
	return &EventDispatchJob{dispatcher: dispatcher, interval: interval}
}

// GetName 获取任务名称
func (j *EventDispatchJob) GetName() string {
	return "lifecycle_event_dispatcher"
}

// GetSchedule 获取调度配置
func (j *EventDispatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *EventDispatchJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 4*j.interval)
	defer cancel()

	n, err := j.dispatcher.DispatchPending(ctx)
	if err != nil {
		logger.Error("Event dispatch failed: %v", err)
		return
	}
	if n > 0 {
		logger.Debug("Dispatched %d lifecycle events", n)
	}
}
