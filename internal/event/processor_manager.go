package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// EventProcessor 事件处理器接口
type EventProcessor interface {
	Name() string
	EventTypes() []string
	Process(ctx context.Context, event *model.EventModel, payload model.EventPayload) error
}

// ProcessorManager 事件处理器管理器，一个事件类型可以有多个处理器
type ProcessorManager struct {
	mu         sync.RWMutex
	processors map[string][]EventProcessor
}

// NewProcessorManager 创建处理器管理器
func NewProcessorManager(processors ...EventProcessor) *ProcessorManager {
	manager := &ProcessorManager{
		processors: make(map[string][]EventProcessor),
	}
	for _, p := range processors {
		manager.RegisterProcessor(p)
	}
	logger.Info("ProcessorManager initialized with %d processors", len(processors))
	return manager
}

// RegisterProcessor 注册事件处理器
func (pm *ProcessorManager) RegisterProcessor(processor EventProcessor) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for _, eventType := range processor.EventTypes() {
		pm.processors[eventType] = append(pm.processors[eventType], processor)
		logger.Debug("Registered processor %s for event type: %s", processor.Name(), eventType)
	}
}

// ProcessEvent 解析事件数据并交给所有已注册的处理器
func (pm *ProcessorManager) ProcessEvent(ctx context.Context, event *model.EventModel) error {
	pm.mu.RLock()
	processors := pm.processors[event.EventType]
	pm.mu.RUnlock()

	if len(processors) == 0 {
		logger.Debug("No processor found for event type: %s", event.EventType)
		return nil
	}

	var payload model.EventPayload
	if event.Data != "" {
		if err := json.Unmarshal([]byte(event.Data), &payload); err != nil {
			// 数据损坏的事件无法重试成功，记录后跳过
			logger.Error("Failed to decode event %d payload: %v", event.Id, err)
			return nil
		}
	}

	for _, p := range processors {
		if err := p.Process(ctx, event, payload); err != nil {
			return fmt.Errorf("processor %s on event %d: %w", p.Name(), event.Id, err)
		}
	}
	return nil
}

// GetSupportedEventTypes 获取支持的事件类型列表
func (pm *ProcessorManager) GetSupportedEventTypes() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	eventTypes := make([]string, 0, len(pm.processors))
	for eventType := range pm.processors {
		eventTypes = append(eventTypes, eventType)
	}
	sort.Strings(eventTypes)
	return eventTypes
}
