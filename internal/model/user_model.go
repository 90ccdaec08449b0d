package model

import (
	"time"
)

// UserModel 平台用户
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email     string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// 角色
	IsAdmin   bool `json:"is_admin" gorm:"not null"`
	IsSupport bool `json:"is_support" gorm:"not null"`

	AccountStatus            AccountStatus `json:"account_status" gorm:"size:32;not null"`
	KycStatus                KycStatus     `json:"kyc_status" gorm:"size:32;not null"`
	RemainingCampaignChances int           `json:"remaining_campaign_chances" gorm:"not null"`
}

// AccountStatus 账户状态
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"    // 正常
	AccountStatusSuspended AccountStatus = "suspended" // 暂停
	AccountStatusBlocked   AccountStatus = "blocked"   // 封禁
)

// KycStatus 实名认证状态
type KycStatus string

const (
	KycStatusPending  KycStatus = "pending"
	KycStatusVerified KycStatus = "verified"
	KycStatusRejected KycStatus = "rejected"
)

// IsStaff 管理员或客服
func (u *UserModel) IsStaff() bool {
	return u.IsAdmin || u.IsSupport
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "users"
}
