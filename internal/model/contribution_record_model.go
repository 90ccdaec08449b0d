package model

import (
	"time"
)

// ContributionRecordModel 捐款记录
type ContributionRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId       int64   `json:"campaign_id" gorm:"not null;index"`
	ContributorId    *int64  `json:"contributor_id" gorm:"index"`
	Amount           int64   `json:"amount" gorm:"not null"`
	PaymentReference *string `json:"payment_reference" gorm:"size:128;uniqueIndex"`
}

// TableName 自定义表名
func (ContributionRecordModel) TableName() string {
	return "contribution_record"
}
