package event

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// NotificationProcessor 把生命周期事件转换为站内通知
type NotificationProcessor struct {
	db            *gorm.DB
	notifications *logic.NotificationLogic
}

// NewNotificationProcessor 创建通知处理器
func NewNotificationProcessor(db *gorm.DB) *NotificationProcessor {
	return &NotificationProcessor{
		db:            db,
		notifications: logic.NewNotificationLogic(db),
	}
}

func (p *NotificationProcessor) Name() string {
	return "notification"
}

func (p *NotificationProcessor) EventTypes() []string {
	return []string{
		model.EventCampaignSubmitted,
		model.EventCampaignStatusChanged,
		model.EventContributionRecorded,
		model.EventFundsClaimed,
		model.EventFraudReported,
		model.EventReportCreated,
		model.EventReportRated,
	}
}

// Process 处理事件
func (p *NotificationProcessor) Process(ctx context.Context, event *model.EventModel, payload model.EventPayload) error {
	var campaign model.CampaignModel
	if err := p.db.WithContext(ctx).First(&campaign, event.CampaignId).Error; err != nil {
		return fmt.Errorf("load campaign %d: %w", event.CampaignId, err)
	}

	var (
		recipients []int64
		title      string
		message    string
		relatedId  = campaign.Id
		err        error
	)
	switch event.EventType {
	case model.EventCampaignSubmitted:
		recipients = []int64{campaign.CreatorId}
		title = "Campaign submitted"
		message = fmt.Sprintf("Your campaign %q is waiting for review.", campaign.Title)

	case model.EventCampaignStatusChanged:
		recipients = []int64{campaign.CreatorId}
		title, message = statusMessage(&campaign, payload)

	case model.EventContributionRecorded:
		recipients = []int64{campaign.CreatorId}
		title = "New contribution"
		message = fmt.Sprintf("Your campaign %q received %d.", campaign.Title, payload.Amount)

	case model.EventFundsClaimed:
		recipients = []int64{campaign.CreatorId}
		title = "Funds claimed"
		message = fmt.Sprintf("You claimed %d from %q.", payload.Amount, campaign.Title)

	case model.EventFraudReported:
		recipients, err = p.staffIds(ctx)
		title = "Fraud report"
		message = fmt.Sprintf("Campaign %s was reported: %s", campaign.DisplayId, payload.Reason)

	case model.EventReportCreated:
		recipients, err = p.contributorIds(ctx, campaign.Id)
		title = "New progress report"
		message = fmt.Sprintf("%q posted a progress report: %s", campaign.Title, payload.Title)
		if event.ProgressReportId != nil {
			relatedId = *event.ProgressReportId
		}

	case model.EventReportRated:
		if event.ProgressReportId == nil {
			return nil
		}
		var report model.ProgressReportModel
		if err := p.db.WithContext(ctx).First(&report, *event.ProgressReportId).Error; err != nil {
			return fmt.Errorf("load progress report %d: %w", *event.ProgressReportId, err)
		}
		recipients = []int64{report.CreatedById}
		title = "Progress report rated"
		message = fmt.Sprintf("Your report %q received a %d-star rating.", report.Title, payload.Rating)
		relatedId = report.Id

	default:
		return nil
	}
	if err != nil {
		return err
	}

	created := 0
	for _, userId := range recipients {
		ok, err := p.notifications.Create(ctx, &model.NotificationModel{
			UserId:    userId,
			EventId:   event.Id,
			Type:      event.EventType,
			Title:     title,
			Message:   message,
			RelatedId: &relatedId,
		})
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	logger.Debug("Event %d (%s) produced %d notifications", event.Id, event.EventType, created)
	return nil
}

func statusMessage(c *model.CampaignModel, payload model.EventPayload) (string, string) {
	switch payload.ToStatus {
	case model.CampaignStatusActive:
		if payload.FromStatus == model.CampaignStatusFlagged {
			return "Campaign restored", fmt.Sprintf("The review of %q is finished and it is live again.", c.Title)
		}
		return "Campaign approved", fmt.Sprintf("%q is now live and accepting contributions.", c.Title)
	case model.CampaignStatusOnProgress:
		return "Minimum reached", fmt.Sprintf("%q is now in progress. Remember to post progress reports.", c.Title)
	case model.CampaignStatusRejected:
		return "Campaign rejected", fmt.Sprintf("%q was rejected: %s", c.Title, payload.Reason)
	case model.CampaignStatusFlagged:
		return "Campaign under review", fmt.Sprintf("%q has been flagged and is paused while we review it.", c.Title)
	}
	label := strings.ReplaceAll(string(payload.ToStatus), "_", " ")
	return "Campaign " + label, fmt.Sprintf("%q is now %s.", c.Title, label)
}

func (p *NotificationProcessor) staffIds(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := p.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("is_admin = ? OR is_support = ?", true, true).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	return ids, nil
}

func (p *NotificationProcessor) contributorIds(ctx context.Context, campaignId int64) ([]int64, error) {
	var ids []int64
	if err := p.db.WithContext(ctx).Model(&model.ContributionRecordModel{}).
		Where("campaign_id = ? AND contributor_id IS NOT NULL", campaignId).
		Distinct("contributor_id").
		Order("contributor_id").
		Pluck("contributor_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load contributors of campaign %d: %w", campaignId, err)
	}
	return ids, nil
}
