package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// CampaignLogic 活动生命周期业务逻辑：状态机与资金约束
type CampaignLogic struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SubmitCampaignInput 创建活动参数
type SubmitCampaignInput struct {
	Title         string
	Description   string
	Category      string
	Location      string
	ImageURL      string
	GoalAmount    int64
	MinimumAmount int64
	DurationDays  int
}

// ContributionInput 捐款附加信息
type ContributionInput struct {
	ContributorId    *int64
	PaymentReference string
}

// CampaignFilter 活动列表过滤条件
type CampaignFilter struct {
	Status    model.CampaignStatus
	CreatorId int64
	Category  string
	Page      int
	PageSize  int
}

// CampaignStats 活动统计
type CampaignStats struct {
	CampaignId         int64                `json:"campaign_id"`
	Status             model.CampaignStatus `json:"status"`
	GoalAmount         int64                `json:"goal_amount"`
	MinimumAmount      int64                `json:"minimum_amount"`
	CurrentAmount      int64                `json:"current_amount"`
	ClaimedAmount      int64                `json:"claimed_amount"`
	ClaimableAmount    int64                `json:"claimable_amount"`
	ProgressPercentage float64              `json:"progress_percentage"`
	ContributionCount  int64                `json:"contribution_count"`
	ContributorCount   int64                `json:"contributor_count"`
	ReportCount        int64                `json:"report_count"`
	AverageCreditScore float64              `json:"average_credit_score"`
	RemainingTime      string               `json:"remaining_time"`
}

// SubmitCampaign 创建者提交活动，初始状态为 pending
func (l *CampaignLogic) SubmitCampaign(ctx context.Context, creatorId int64, in SubmitCampaignInput) (*model.CampaignModel, error) {
	if err := validateCampaignInput(in); err != nil {
		return nil, err
	}

	campaign := &model.CampaignModel{
		DisplayId:     newDisplayId(),
		CreatorId:     creatorId,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Category:      in.Category,
		Location:      in.Location,
		ImageURL:      in.ImageURL,
		GoalAmount:    in.GoalAmount,
		MinimumAmount: in.MinimumAmount,
		DurationDays:  in.DurationDays,
		Status:        model.CampaignStatusPending,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		creator, err := loadUser(tx, creatorId)
		if err != nil {
			return err
		}
		if creator.IsStaff() {
			return newError(KindForbidden, "administrators and support staff cannot create campaigns")
		}
		if creator.AccountStatus != model.AccountStatusActive {
			return newError(KindForbidden, "account status is %s", creator.AccountStatus)
		}
		if creator.RemainingCampaignChances <= 0 {
			return newError(KindForbidden, "no remaining campaign chances")
		}

		if err := tx.Create(campaign).Error; err != nil {
			return fmt.Errorf("create campaign: %w", err)
		}
		return recordEvent(tx, model.EventCampaignSubmitted, campaign.Id, nil, int64Ptr(creatorId),
			model.EventPayload{ToStatus: campaign.Status, Title: campaign.Title})
	})
	if err != nil {
		logger.Warn("Campaign submission by user %d rejected: %v", creatorId, err)
		return nil, err
	}

	logger.Info("Campaign %d (%s) submitted by user %d", campaign.Id, campaign.DisplayId, creatorId)
	return campaign, nil
}

// validateCampaignInput 验证活动数据
func validateCampaignInput(in SubmitCampaignInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return newError(KindInvalidInput, "title is required")
	}
	if in.GoalAmount <= 0 {
		return newError(KindInvalidAmount, "goal amount must be greater than 0")
	}
	if in.MinimumAmount <= 0 {
		return newError(KindInvalidAmount, "minimum amount must be greater than 0")
	}
	if in.MinimumAmount > in.GoalAmount {
		return newError(KindInvalidAmount, "minimum amount %d exceeds goal amount %d", in.MinimumAmount, in.GoalAmount)
	}
	if in.DurationDays <= 0 {
		return newError(KindInvalidInput, "duration must be greater than 0 days")
	}
	return nil
}

func newDisplayId() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CAM-" + strings.ToUpper(id[:8])
}

// transitionRequest 一次状态迁移的描述
type transitionRequest struct {
	campaignId int64
	actorId    int64
	to         model.CampaignStatus
	// from 为空时只受状态机约束，否则当前状态还必须在其中
	from      []model.CampaignStatus
	authorize func(tx *gorm.DB, c *model.CampaignModel) error
	check     func(c *model.CampaignModel) error
	fields    func(c *model.CampaignModel, now time.Time) map[string]interface{}
	after     func(tx *gorm.DB, c *model.CampaignModel) error
	reason    string
}

// applyTransition 读取最新状态、校验、条件更新并写入事件，全部在一个事务内
func (l *CampaignLogic) applyTransition(ctx context.Context, req transitionRequest) (*model.CampaignModel, error) {
	var result *model.CampaignModel
	var from model.CampaignStatus

	err := runInTx(ctx, l.db, func(tx *gorm.DB) error {
		campaign, err := loadCampaign(tx, req.campaignId)
		if err != nil {
			return err
		}
		if req.authorize != nil {
			if err := req.authorize(tx, campaign); err != nil {
				return err
			}
		}
		if err := ValidateTransition(campaign.Id, campaign.Status, req.to); err != nil {
			return err
		}
		if len(req.from) > 0 && !containsStatus(req.from, campaign.Status) {
			return &InvalidTransitionError{
				CampaignId: campaign.Id,
				From:       campaign.Status,
				To:         req.to,
				Reason:     fmt.Sprintf("operation requires status %s", joinStatuses(req.from)),
			}
		}
		if req.check != nil {
			if err := req.check(campaign); err != nil {
				return err
			}
		}

		var fields map[string]interface{}
		if req.fields != nil {
			fields = req.fields(campaign, l.now())
		}
		if err := compareAndSetStatus(tx, campaign, req.to, fields); err != nil {
			return err
		}
		if err := recordEvent(tx, model.EventCampaignStatusChanged, campaign.Id, nil, actorPtr(req.actorId),
			model.EventPayload{FromStatus: campaign.Status, ToStatus: req.to, Reason: req.reason}); err != nil {
			return err
		}
		if req.after != nil {
			if err := req.after(tx, campaign); err != nil {
				return err
			}
		}

		from = campaign.Status
		result, err = loadCampaign(tx, campaign.Id)
		return err
	})
	if err != nil {
		logger.Warn("Campaign %d transition to %s by user %d rejected: %v", req.campaignId, req.to, req.actorId, err)
		return nil, err
	}

	logger.Info("Campaign %d moved from %s to %s by user %d", result.Id, from, result.Status, req.actorId)
	return result, nil
}

func adminOnly(adminId int64, allowSupport bool) func(tx *gorm.DB, c *model.CampaignModel) error {
	return func(tx *gorm.DB, _ *model.CampaignModel) error {
		_, err := requireAdmin(tx, adminId, allowSupport)
		return err
	}
}

// creatorOrAdmin 活动创建者或管理员
func creatorOrAdmin(actorId int64) func(tx *gorm.DB, c *model.CampaignModel) error {
	return func(tx *gorm.DB, c *model.CampaignModel) error {
		if c.CreatorId == actorId {
			return nil
		}
		if _, err := requireAdmin(tx, actorId, false); err != nil {
			return newError(KindForbidden, "user %d is neither the creator of campaign %d nor an administrator", actorId, c.Id)
		}
		return nil
	}
}

// Approve 管理员审核通过
func (l *CampaignLogic) Approve(ctx context.Context, adminId, campaignId int64) (*model.CampaignModel, error) {
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    adminId,
		to:         model.CampaignStatusActive,
		from:       []model.CampaignStatus{model.CampaignStatusPending},
		authorize:  adminOnly(adminId, false),
		fields: func(c *model.CampaignModel, now time.Time) map[string]interface{} {
			return map[string]interface{}{
				"approved_by": adminId,
				"approved_at": now,
				"end_date":    now.AddDate(0, 0, c.DurationDays),
			}
		},
	})
}

// Reject 管理员拒绝，必须填写原因
func (l *CampaignLogic) Reject(ctx context.Context, adminId, campaignId int64, reason string) (*model.CampaignModel, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(KindInvalidInput, "rejection reason is required")
	}
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    adminId,
		to:         model.CampaignStatusRejected,
		from:       []model.CampaignStatus{model.CampaignStatusPending},
		authorize:  adminOnly(adminId, false),
		fields:     rejectionFields(adminId, reason),
		reason:     reason,
	})
}

func rejectionFields(adminId int64, reason string) func(c *model.CampaignModel, now time.Time) map[string]interface{} {
	return func(_ *model.CampaignModel, now time.Time) map[string]interface{} {
		return map[string]interface{}{
			"rejected_by":      adminId,
			"rejected_at":      now,
			"rejection_reason": reason,
		}
	}
}

// ClaimReview 管理员或客服认领待审核活动
func (l *CampaignLogic) ClaimReview(ctx context.Context, adminId, campaignId int64) (*model.CampaignModel, error) {
	var result *model.CampaignModel
	err := runInTx(ctx, l.db, func(tx *gorm.DB) error {
		if _, err := requireAdmin(tx, adminId, true); err != nil {
			return err
		}
		campaign, err := loadCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if campaign.Status != model.CampaignStatusPending {
			return newError(KindInvalidTransition, "campaign %d is %s; only pending campaigns can be claimed for review",
				campaign.Id, campaign.Status)
		}
		if campaign.ClaimedBy != nil {
			if *campaign.ClaimedBy == adminId {
				result = campaign
				return nil
			}
			return newError(KindForbidden, "campaign %d is already claimed by user %d", campaign.Id, *campaign.ClaimedBy)
		}

		res := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status = ? AND claimed_by IS NULL", campaign.Id, model.CampaignStatusPending).
			Updates(map[string]interface{}{"claimed_by": adminId, "claimed_at": l.now()})
		if res.Error != nil {
			return fmt.Errorf("claim campaign %d: %w", campaign.Id, res.Error)
		}
		if res.RowsAffected == 0 {
			return errStaleState
		}
		if err := recordEvent(tx, model.EventCampaignReviewClaimed, campaign.Id, nil, int64Ptr(adminId), model.EventPayload{}); err != nil {
			return err
		}
		result, err = loadCampaign(tx, campaign.Id)
		return err
	})
	if err != nil {
		logger.Warn("Review claim of campaign %d by user %d rejected: %v", campaignId, adminId, err)
		return nil, err
	}
	logger.Info("Campaign %d claimed for review by user %d", campaignId, adminId)
	return result, nil
}

// StartProgress 手动从 active 进入 on_progress
func (l *CampaignLogic) StartProgress(ctx context.Context, actorId, campaignId int64) (*model.CampaignModel, error) {
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    actorId,
		to:         model.CampaignStatusOnProgress,
		from:       []model.CampaignStatus{model.CampaignStatusActive},
		authorize:  creatorOrAdmin(actorId),
	})
}

// Cancel 在达到最低金额前取消
func (l *CampaignLogic) Cancel(ctx context.Context, actorId, campaignId int64, reason string) (*model.CampaignModel, error) {
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    actorId,
		to:         model.CampaignStatusCancelled,
		authorize:  creatorOrAdmin(actorId),
		check: func(c *model.CampaignModel) error {
			if c.CurrentAmount >= c.MinimumAmount {
				return &InvalidTransitionError{CampaignId: c.Id, From: c.Status, To: model.CampaignStatusCancelled,
					Reason: "minimum amount already reached"}
			}
			return nil
		},
		reason: strings.TrimSpace(reason),
	})
}

// MarkCompleted 创建者或管理员标记完成
func (l *CampaignLogic) MarkCompleted(ctx context.Context, actorId, campaignId int64) (*model.CampaignModel, error) {
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    actorId,
		to:         model.CampaignStatusCompleted,
		from:       []model.CampaignStatus{model.CampaignStatusOnProgress},
		authorize:  creatorOrAdmin(actorId),
		fields:     completionFields,
	})
}

func completionFields(_ *model.CampaignModel, now time.Time) map[string]interface{} {
	return map[string]interface{}{"completed_at": now}
}

// Flag 管理员或客服根据举报冻结活动，未处理的举报标记为已升级
func (l *CampaignLogic) Flag(ctx context.Context, actorId, campaignId int64, reason string) (*model.CampaignModel, error) {
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    actorId,
		to:         model.CampaignStatusFlagged,
		authorize:  adminOnly(actorId, true),
		fields: func(c *model.CampaignModel, _ time.Time) map[string]interface{} {
			return map[string]interface{}{"flagged_from_status": c.Status}
		},
		after: func(tx *gorm.DB, c *model.CampaignModel) error {
			return tx.Model(&model.FraudReportModel{}).
				Where("campaign_id = ? AND status = ?", c.Id, model.FraudReportStatusPending).
				Update("status", model.FraudReportStatusEscalated).Error
		},
		reason: strings.TrimSpace(reason),
	})
}

// ClearFlag 管理员解除冻结，回到 active 或 on_progress；nextStatus 为空时回到冻结前的状态
func (l *CampaignLogic) ClearFlag(ctx context.Context, adminId, campaignId int64, nextStatus model.CampaignStatus) (*model.CampaignModel, error) {
	if nextStatus == "" {
		var campaign model.CampaignModel
		if err := l.db.WithContext(ctx).Select("id", "status", "flagged_from_status").First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(KindNotFound, "campaign %d not found", campaignId)
			}
			return nil, fmt.Errorf("load campaign %d: %w", campaignId, err)
		}
		nextStatus = campaign.FlaggedFromStatus
		if nextStatus == "" {
			nextStatus = model.CampaignStatusActive
		}
	}
	if nextStatus != model.CampaignStatusActive && nextStatus != model.CampaignStatusOnProgress {
		return nil, &InvalidTransitionError{CampaignId: campaignId, From: model.CampaignStatusFlagged, To: nextStatus,
			Reason: "a cleared flag returns the campaign to active or on_progress"}
	}
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    adminId,
		to:         nextStatus,
		from:       []model.CampaignStatus{model.CampaignStatusFlagged},
		authorize:  adminOnly(adminId, false),
		fields: func(_ *model.CampaignModel, _ time.Time) map[string]interface{} {
			return map[string]interface{}{"flagged_from_status": ""}
		},
	})
}

// UpholdFlag 管理员维持举报结论，活动被拒绝
func (l *CampaignLogic) UpholdFlag(ctx context.Context, adminId, campaignId int64, reason string) (*model.CampaignModel, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(KindInvalidInput, "rejection reason is required")
	}
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    adminId,
		to:         model.CampaignStatusRejected,
		from:       []model.CampaignStatus{model.CampaignStatusFlagged},
		authorize:  adminOnly(adminId, false),
		fields:     rejectionFields(adminId, reason),
		reason:     reason,
	})
}

// CloseWithRefund 管理员关闭已募资但无法完成的活动
func (l *CampaignLogic) CloseWithRefund(ctx context.Context, adminId, campaignId int64, reason string) (*model.CampaignModel, error) {
	return l.applyTransition(ctx, transitionRequest{
		campaignId: campaignId,
		actorId:    adminId,
		to:         model.CampaignStatusClosedWithRefund,
		authorize:  adminOnly(adminId, false),
		reason:     strings.TrimSpace(reason),
	})
}

// RecordContribution 支付确认后记录捐款。达到最低金额的 active 活动自动进入 on_progress，
// 这是状态机中唯一的自动迁移。
func (l *CampaignLogic) RecordContribution(ctx context.Context, campaignId, amount int64, in ContributionInput) (*model.CampaignModel, error) {
	if amount <= 0 {
		return nil, newError(KindInvalidAmount, "contribution amount must be greater than 0")
	}
	reference := strings.TrimSpace(in.PaymentReference)

	var result *model.CampaignModel
	var autoProgressed bool
	err := runInTx(ctx, l.db, func(tx *gorm.DB) error {
		autoProgressed = false
		campaign, err := loadCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if !acceptsContributions(campaign.Status) {
			return newError(KindInvalidTransition, "campaign %d is %s and does not accept contributions",
				campaign.Id, campaign.Status)
		}
		if in.ContributorId != nil {
			if *in.ContributorId == campaign.CreatorId {
				return newError(KindForbidden, "creators cannot contribute to their own campaign %d", campaign.Id)
			}
			contributor, err := loadUser(tx, *in.ContributorId)
			if err != nil {
				return err
			}
			if contributor.IsStaff() {
				return newError(KindForbidden, "administrators and support staff cannot contribute")
			}
		}

		record := model.ContributionRecordModel{
			CampaignId:    campaign.Id,
			ContributorId: in.ContributorId,
			Amount:        amount,
		}
		if reference != "" {
			var count int64
			if err := tx.Model(&model.ContributionRecordModel{}).Where("payment_reference = ?", reference).Count(&count).Error; err != nil {
				return fmt.Errorf("check payment reference: %w", err)
			}
			if count > 0 {
				return newError(KindInvalidAmount, "duplicate payment reference %q", reference)
			}
			record.PaymentReference = &reference
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(KindInvalidAmount, "duplicate payment reference %q", reference)
			}
			return fmt.Errorf("create contribution record: %w", err)
		}

		// 原子自增，避免并发丢失更新
		res := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status IN ?", campaign.Id,
				[]model.CampaignStatus{model.CampaignStatusActive, model.CampaignStatusOnProgress}).
			Update("current_amount", gorm.Expr("current_amount + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("increment current amount: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errStaleState
		}
		if err := recordEvent(tx, model.EventContributionRecorded, campaign.Id, nil, in.ContributorId,
			model.EventPayload{Amount: amount}); err != nil {
			return err
		}

		// 自动迁移同样走状态机校验
		if campaign.Status == model.CampaignStatusActive {
			if err := ValidateTransition(campaign.Id, campaign.Status, model.CampaignStatusOnProgress); err != nil {
				return err
			}
			res = tx.Model(&model.CampaignModel{}).
				Where("id = ? AND status = ? AND current_amount >= minimum_amount", campaign.Id, model.CampaignStatusActive).
				Update("status", model.CampaignStatusOnProgress)
			if res.Error != nil {
				return fmt.Errorf("advance campaign %d: %w", campaign.Id, res.Error)
			}
			if res.RowsAffected == 1 {
				autoProgressed = true
				if err := recordEvent(tx, model.EventCampaignStatusChanged, campaign.Id, nil, nil,
					model.EventPayload{FromStatus: model.CampaignStatusActive, ToStatus: model.CampaignStatusOnProgress,
						Reason: "minimum amount reached"}); err != nil {
					return err
				}
			}
		}

		result, err = loadCampaign(tx, campaign.Id)
		return err
	})
	if err != nil {
		logger.Warn("Contribution of %d to campaign %d rejected: %v", amount, campaignId, err)
		return nil, err
	}

	logger.Info("Recorded contribution of %d to campaign %d, current amount %d/%d",
		amount, result.Id, result.CurrentAmount, result.GoalAmount)
	if autoProgressed {
		logger.Info("Campaign %d reached minimum amount %d and moved to %s",
			result.Id, result.MinimumAmount, result.Status)
	}
	return result, nil
}

// ClaimFunds 创建者提取已筹资金，累计提取额不得超过已筹金额
func (l *CampaignLogic) ClaimFunds(ctx context.Context, creatorId, campaignId, amount int64) (*model.CampaignModel, error) {
	if amount <= 0 {
		return nil, newError(KindInvalidAmount, "claim amount must be greater than 0")
	}

	var result *model.CampaignModel
	err := runInTx(ctx, l.db, func(tx *gorm.DB) error {
		campaign, err := loadCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if campaign.CreatorId != creatorId {
			return newError(KindForbidden, "only the creator of campaign %d can claim funds", campaign.Id)
		}
		if !allowsClaim(campaign.Status) {
			return newError(KindInvalidTransition, "campaign %d is %s and funds cannot be claimed", campaign.Id, campaign.Status)
		}
		if campaign.ClaimedAmount+amount > campaign.CurrentAmount {
			return newError(KindInsufficientClaimableAmount, "requested %d but only %d is claimable",
				amount, campaign.ClaimableAmount())
		}

		res := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status IN ? AND claimed_amount + ? <= current_amount", campaign.Id, claimableStatuses, amount).
			Update("claimed_amount", gorm.Expr("claimed_amount + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("increment claimed amount: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errStaleState
		}
		if err := tx.Create(&model.FundClaimModel{CampaignId: campaign.Id, CreatorId: creatorId, Amount: amount}).Error; err != nil {
			return fmt.Errorf("create fund claim: %w", err)
		}
		if err := recordEvent(tx, model.EventFundsClaimed, campaign.Id, nil, int64Ptr(creatorId),
			model.EventPayload{Amount: amount}); err != nil {
			return err
		}
		result, err = loadCampaign(tx, campaign.Id)
		return err
	})
	if err != nil {
		logger.Warn("Claim of %d from campaign %d by user %d rejected: %v", amount, campaignId, creatorId, err)
		return nil, err
	}

	logger.Info("User %d claimed %d from campaign %d, claimed %d/%d",
		creatorId, amount, result.Id, result.ClaimedAmount, result.CurrentAmount)
	return result, nil
}

// ReportFraud 用户举报活动或其中的附件，不改变活动状态
func (l *CampaignLogic) ReportFraud(ctx context.Context, reporterId, campaignId int64, documentId *int64, reason string) (*model.FraudReportModel, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(KindInvalidInput, "fraud report reason is required")
	}

	report := &model.FraudReportModel{
		ReporterId: reporterId,
		CampaignId: campaignId,
		DocumentId: documentId,
		Reason:     reason,
		Status:     model.FraudReportStatusPending,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, reporterId); err != nil {
			return err
		}
		if _, err := loadCampaign(tx, campaignId); err != nil {
			return err
		}
		if documentId != nil {
			var count int64
			err := tx.Model(&model.ProgressReportDocumentModel{}).
				Joins("JOIN progress_report ON progress_report.id = progress_report_document.progress_report_id").
				Where("progress_report_document.id = ? AND progress_report.campaign_id = ?", *documentId, campaignId).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("check reported document: %w", err)
			}
			if count == 0 {
				return newError(KindNotFound, "document %d not found in campaign %d", *documentId, campaignId)
			}
		}
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("create fraud report: %w", err)
		}
		return recordEvent(tx, model.EventFraudReported, campaignId, nil, int64Ptr(reporterId),
			model.EventPayload{Reason: reason})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Fraud report %d filed against campaign %d by user %d", report.Id, campaignId, reporterId)
	return report, nil
}

// FinishExpiredCampaigns 到期的 on_progress 活动标记为完成，返回处理数量
func (l *CampaignLogic) FinishExpiredCampaigns(ctx context.Context, now time.Time) (int, error) {
	var ids []int64
	if err := l.db.WithContext(ctx).Model(&model.CampaignModel{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", model.CampaignStatusOnProgress, now.UTC()).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("fetch expired campaigns: %w", err)
	}

	finished := 0
	for _, id := range ids {
		_, err := l.applyTransition(ctx, transitionRequest{
			campaignId: id,
			to:         model.CampaignStatusCompleted,
			from:       []model.CampaignStatus{model.CampaignStatusOnProgress},
			fields:     completionFields,
			reason:     "campaign duration elapsed",
		})
		if err != nil {
			// 期间状态可能已被管理员修改
			logger.Error("Failed to finish campaign %d: %v", id, err)
			continue
		}
		finished++
	}
	return finished, nil
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(ctx context.Context, id int64) (*model.CampaignModel, error) {
	return loadCampaign(l.db.WithContext(ctx), id)
}

// ListCampaigns 获取活动列表
func (l *CampaignLogic) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.CampaignModel, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	query := l.db.WithContext(ctx).Model(&model.CampaignModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatorId > 0 {
		query = query.Where("creator_id = ?", filter.CreatorId)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	var campaigns []model.CampaignModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, total, nil
}

// GetCampaignStats 获取活动统计信息
func (l *CampaignLogic) GetCampaignStats(ctx context.Context, id int64) (*CampaignStats, error) {
	db := l.db.WithContext(ctx)
	campaign, err := loadCampaign(db, id)
	if err != nil {
		return nil, err
	}

	stats := &CampaignStats{
		CampaignId:      campaign.Id,
		Status:          campaign.Status,
		GoalAmount:      campaign.GoalAmount,
		MinimumAmount:   campaign.MinimumAmount,
		CurrentAmount:   campaign.CurrentAmount,
		ClaimedAmount:   campaign.ClaimedAmount,
		ClaimableAmount: campaign.ClaimableAmount(),
		RemainingTime:   time.Duration(0).String(),
	}
	if campaign.GoalAmount > 0 {
		stats.ProgressPercentage = float64(campaign.CurrentAmount) / float64(campaign.GoalAmount) * 100
	}
	if campaign.EndDate != nil && (campaign.Status == model.CampaignStatusActive || campaign.Status == model.CampaignStatusOnProgress) {
		if remaining := campaign.EndDate.Sub(l.now()); remaining > 0 {
			stats.RemainingTime = remaining.Round(time.Minute).String()
		}
	}

	if err := db.Model(&model.ContributionRecordModel{}).Where("campaign_id = ?", id).Count(&stats.ContributionCount).Error; err != nil {
		return nil, fmt.Errorf("count contributions: %w", err)
	}
	if err := db.Model(&model.ContributionRecordModel{}).
		Where("campaign_id = ? AND contributor_id IS NOT NULL", id).
		Distinct("contributor_id").
		Count(&stats.ContributorCount).Error; err != nil {
		return nil, fmt.Errorf("count contributors: %w", err)
	}
	if err := db.Model(&model.ProgressReportModel{}).Where("campaign_id = ?", id).Count(&stats.ReportCount).Error; err != nil {
		return nil, fmt.Errorf("count progress reports: %w", err)
	}
	if err := db.Model(&model.UserCreditScoreModel{}).
		Where("campaign_id = ?", id).
		Select("COALESCE(AVG(score_percentage), 0)").
		Scan(&stats.AverageCreditScore).Error; err != nil {
		return nil, fmt.Errorf("average credit score: %w", err)
	}
	return stats, nil
}

func containsStatus(list []model.CampaignStatus, s model.CampaignStatus) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func joinStatuses(list []model.CampaignStatus) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = string(s)
	}
	return strings.Join(parts, " or ")
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
