package model

import (
	"time"
)

// ProgressReportModel 资金使用进度报告
type ProgressReportModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64     `json:"campaign_id" gorm:"not null;index"`
	CreatedById int64     `json:"created_by_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	ReportDate  time.Time `json:"report_date" gorm:"not null"`
}

// TableName 自定义表名
func (ProgressReportModel) TableName() string {
	return "progress_report"
}
