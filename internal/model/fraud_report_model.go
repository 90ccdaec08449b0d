package model

import (
	"time"
)

// FraudReportModel 欺诈举报
type FraudReportModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReporterId int64             `json:"reporter_id" gorm:"not null"`
	CampaignId int64             `json:"campaign_id" gorm:"not null;index"`
	DocumentId *int64            `json:"document_id"`
	Reason     string            `json:"reason" gorm:"type:text;not null"`
	Status     FraudReportStatus `json:"status" gorm:"size:32;not null"`
}

// FraudReportStatus 举报状态
type FraudReportStatus string

const (
	FraudReportStatusPending   FraudReportStatus = "pending"   // 待处理
	FraudReportStatusEscalated FraudReportStatus = "escalated" // 已升级，活动被冻结
)

// TableName 自定义表名
func (FraudReportModel) TableName() string {
	return "fraud_report"
}
