package model

import (
	"time"
)

// NotificationModel 站内通知
type NotificationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId    int64  `json:"user_id" gorm:"not null;index"`
	EventId   int64  `json:"event_id" gorm:"not null;index"`
	Type      string `json:"type" gorm:"size:64;not null"`
	Title     string `json:"title" gorm:"not null"`
	Message   string `json:"message" gorm:"type:text"`
	RelatedId *int64 `json:"related_id"`
	IsRead    bool   `json:"is_read" gorm:"not null"`
}

// TableName 自定义表名
func (NotificationModel) TableName() string {
	return "notification"
}
