package logic

import (
	"slices"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// campaignTransitions 活动状态机的全部合法边，所有状态变更都必须经过 ValidateTransition
var campaignTransitions = map[model.CampaignStatus][]model.CampaignStatus{
	model.CampaignStatusPending: {
		model.CampaignStatusActive,
		model.CampaignStatusRejected,
	},
	model.CampaignStatusActive: {
		model.CampaignStatusOnProgress,
		model.CampaignStatusFlagged,
		model.CampaignStatusCancelled,
	},
	model.CampaignStatusOnProgress: {
		model.CampaignStatusCompleted,
		model.CampaignStatusFlagged,
		model.CampaignStatusClosedWithRefund,
	},
	model.CampaignStatusFlagged: {
		model.CampaignStatusActive,
		model.CampaignStatusOnProgress,
		model.CampaignStatusClosedWithRefund,
		model.CampaignStatusRejected,
	},
}

// CanTransition 是否存在 from -> to 的边
func CanTransition(from, to model.CampaignStatus) bool {
	for _, next := range campaignTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses 当前状态可迁移到的状态
func NextStatuses(from model.CampaignStatus) []model.CampaignStatus {
	return append([]model.CampaignStatus(nil), campaignTransitions[from]...)
}

// ValidateTransition 校验状态迁移
func ValidateTransition(campaignId int64, from, to model.CampaignStatus) error {
	if !from.IsValid() || !to.IsValid() {
		return &InvalidTransitionError{CampaignId: campaignId, From: from, To: to, Reason: "unknown status"}
	}
	if !CanTransition(from, to) {
		reason := "edge not permitted"
		if IsTerminal(from) {
			reason = "campaign is in a terminal state"
		}
		return &InvalidTransitionError{CampaignId: campaignId, From: from, To: to, Reason: reason}
	}
	return nil
}

// IsTerminal 终态：completed, rejected, closed_with_refund
func IsTerminal(s model.CampaignStatus) bool {
	switch s {
	case model.CampaignStatusCompleted, model.CampaignStatusRejected, model.CampaignStatusClosedWithRefund:
		return true
	}
	return false
}

func acceptsContributions(s model.CampaignStatus) bool {
	return s == model.CampaignStatusActive || s == model.CampaignStatusOnProgress
}

// claimableStatuses 只有执行中或已完成的活动可以提取资金
var claimableStatuses = []model.CampaignStatus{model.CampaignStatusOnProgress, model.CampaignStatusCompleted}

func allowsClaim(s model.CampaignStatus) bool {
	return slices.Contains(claimableStatuses, s)
}

func allowsReportCreation(s model.CampaignStatus) bool {
	return s == model.CampaignStatusOnProgress
}

// allowsDocumentUpload 上传范围比创建报告更宽，允许已回落到 active 或已取消的活动补齐材料
func allowsDocumentUpload(s model.CampaignStatus) bool {
	switch s {
	case model.CampaignStatusOnProgress, model.CampaignStatusActive, model.CampaignStatusCancelled:
		return true
	}
	return false
}
