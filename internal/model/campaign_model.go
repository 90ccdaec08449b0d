package model

import (
	"time"
)

// CampaignModel 众筹活动
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	DisplayId   string `json:"display_id" gorm:"size:16;uniqueIndex;not null"`
	CreatorId   int64  `json:"creator_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`

	// 资金信息
	GoalAmount    int64 `json:"goal_amount" gorm:"not null"`
	MinimumAmount int64 `json:"minimum_amount" gorm:"not null"`
	CurrentAmount int64 `json:"current_amount" gorm:"not null"`
	ClaimedAmount int64 `json:"claimed_amount" gorm:"not null"`

	// 时间信息
	DurationDays int        `json:"duration_days" gorm:"not null"`
	EndDate      *time.Time `json:"end_date"`
	CompletedAt  *time.Time `json:"completed_at"`

	// 状态
	Status            CampaignStatus `json:"status" gorm:"size:32;not null;index"`
	FlaggedFromStatus CampaignStatus `json:"flagged_from_status,omitempty" gorm:"size:32"`

	// 审核信息
	ClaimedBy       *int64     `json:"claimed_by"`
	ClaimedAt       *time.Time `json:"claimed_at"`
	ApprovedBy      *int64     `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedBy      *int64     `json:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason string     `json:"rejection_reason" gorm:"type:text"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusPending          CampaignStatus = "pending"            // 待审核
	CampaignStatusActive           CampaignStatus = "active"             // 募集中
	CampaignStatusOnProgress       CampaignStatus = "on_progress"        // 已达最低金额，执行中
	CampaignStatusCompleted        CampaignStatus = "completed"          // 已完成
	CampaignStatusCancelled        CampaignStatus = "cancelled"          // 已取消
	CampaignStatusRejected         CampaignStatus = "rejected"           // 已拒绝
	CampaignStatusFlagged          CampaignStatus = "flagged"            // 被举报冻结
	CampaignStatusClosedWithRefund CampaignStatus = "closed_with_refund" // 关闭并退款
)

// AllCampaignStatuses 所有活动状态
var AllCampaignStatuses = []CampaignStatus{
	CampaignStatusPending,
	CampaignStatusActive,
	CampaignStatusOnProgress,
	CampaignStatusCompleted,
	CampaignStatusCancelled,
	CampaignStatusRejected,
	CampaignStatusFlagged,
	CampaignStatusClosedWithRefund,
}

// IsValid 是否为已知状态
func (s CampaignStatus) IsValid() bool {
	for _, status := range AllCampaignStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ClaimableAmount 可提取金额
func (c *CampaignModel) ClaimableAmount() int64 {
	return c.CurrentAmount - c.ClaimedAmount
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
