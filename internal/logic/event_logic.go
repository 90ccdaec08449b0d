package logic

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// EventLogic 生命周期事件读取与确认
type EventLogic struct {
	db *gorm.DB
}

// NewEventLogic 创建事件业务逻辑
func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// FetchUnprocessed 按写入顺序获取未处理事件
func (e *EventLogic) FetchUnprocessed(ctx context.Context, limit int) ([]model.EventModel, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []model.EventModel
	if err := e.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("fetch unprocessed events: %w", err)
	}
	return events, nil
}

// MarkProcessed 标记事件已处理
func (e *EventLogic) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := e.db.WithContext(ctx).Model(&model.EventModel{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("mark events processed: %w", err)
	}
	return nil
}

// ListCampaignEvents 活动的事件历史，即状态流转审计记录
func (e *EventLogic) ListCampaignEvents(ctx context.Context, campaignId int64, eventType string, page, pageSize int) ([]model.EventModel, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	query := e.db.WithContext(ctx).Model(&model.EventModel{}).Where("campaign_id = ?", campaignId)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	var events []model.EventModel
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}
