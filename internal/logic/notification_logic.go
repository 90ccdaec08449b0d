package logic

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// NotificationLogic 站内通知
type NotificationLogic struct {
	db *gorm.DB
}

// NewNotificationLogic 创建通知业务逻辑
func NewNotificationLogic(db *gorm.DB) *NotificationLogic {
	return &NotificationLogic{db: db}
}

// Create 写入通知；同一事件对同一用户只生成一条，事件重放时跳过
func (l *NotificationLogic) Create(ctx context.Context, n *model.NotificationModel) (bool, error) {
	created := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.NotificationModel{}).
			Where("event_id = ? AND user_id = ?", n.EventId, n.UserId).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check notification: %w", err)
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

// ListForUser 用户通知列表，未读优先
func (l *NotificationLogic) ListForUser(ctx context.Context, userId int64, unreadOnly bool, page, pageSize int) ([]model.NotificationModel, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	query := l.db.WithContext(ctx).Model(&model.NotificationModel{}).Where("user_id = ?", userId)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	var notifications []model.NotificationModel
	if err := query.Order("is_read ASC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead 标记已读，只能操作自己的通知
func (l *NotificationLogic) MarkRead(ctx context.Context, userId, notificationId int64) error {
	res := l.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("id = ? AND user_id = ?", notificationId, userId).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationId, res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindNotFound, "notification %d not found", notificationId)
	}
	return nil
}
