package model

import (
	"time"
)

// EventModel 生命周期事件，与状态变更在同一事务中写入，由分发任务异步消费
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventType        string     `json:"event_type" gorm:"size:64;not null;index"`
	CampaignId       int64      `json:"campaign_id" gorm:"not null;index"`
	ProgressReportId *int64     `json:"progress_report_id"`
	ActorId          *int64     `json:"actor_id"`
	Data             string     `json:"data" gorm:"type:text"`
	Processed        bool       `json:"processed" gorm:"not null;index"`
	ProcessedAt      *time.Time `json:"processed_at"`
}

const (
	EventCampaignSubmitted     = "campaign.submitted"
	EventCampaignReviewClaimed = "campaign.review_claimed"
	EventCampaignStatusChanged = "campaign.status_changed"
	EventContributionRecorded  = "campaign.contribution_recorded"
	EventFundsClaimed          = "campaign.funds_claimed"
	EventFraudReported         = "campaign.fraud_reported"
	EventReportCreated         = "report.created"
	EventScoreRecomputed       = "report.score_recomputed"
	EventReportRated           = "report.rated"
)

// EventPayload 事件数据
type EventPayload struct {
	FromStatus      CampaignStatus `json:"from_status,omitempty"`
	ToStatus        CampaignStatus `json:"to_status,omitempty"`
	Amount          int64          `json:"amount,omitempty"`
	ScorePercentage int            `json:"score_percentage,omitempty"`
	DocumentType    DocumentType   `json:"document_type,omitempty"`
	Rating          int            `json:"rating,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	Title           string         `json:"title,omitempty"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "lifecycle_event"
}
