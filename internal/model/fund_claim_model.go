package model

import (
	"time"
)

// FundClaimModel 创建者提款记录
type FundClaimModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64 `json:"campaign_id" gorm:"not null;index"`
	CreatorId  int64 `json:"creator_id" gorm:"not null"`
	Amount     int64 `json:"amount" gorm:"not null"`
}

// TableName 自定义表名
func (FundClaimModel) TableName() string {
	return "fund_claim"
}
