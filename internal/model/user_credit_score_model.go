package model

import (
	"time"
)

// UserCreditScoreModel 进度报告信用分，由附件推导，不可直接修改
type UserCreditScoreModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId           int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_credit_score_owner"`
	CampaignId       int64 `json:"campaign_id" gorm:"not null;uniqueIndex:idx_credit_score_owner"`
	ProgressReportId int64 `json:"progress_report_id" gorm:"not null;uniqueIndex:idx_credit_score_owner"`

	ScorePercentage        int            `json:"score_percentage" gorm:"not null"`
	CompletedDocumentTypes []DocumentType `json:"completed_document_types" gorm:"type:text;serializer:json"`
	TotalRequiredTypes     int            `json:"total_required_types" gorm:"not null"`
	CatalogVersion         string         `json:"catalog_version" gorm:"size:32"`
}

// TableName 自定义表名
func (UserCreditScoreModel) TableName() string {
	return "user_credit_score"
}
