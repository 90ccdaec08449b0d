package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// AuditProcessor 将状态流转写入结构化日志，供日志平台检索
type AuditProcessor struct{}

func NewAuditProcessor() *AuditProcessor {
	return &AuditProcessor{}
}

func (p *AuditProcessor) Name() string {
	return "audit"
}

func (p *AuditProcessor) EventTypes() []string {
	return []string{model.EventCampaignStatusChanged, model.EventFundsClaimed, model.EventFraudReported}
}

func (p *AuditProcessor) Process(_ context.Context, event *model.EventModel, payload model.EventPayload) error {
	actor := int64(0)
	if event.ActorId != nil {
		actor = *event.ActorId
	}
	logger.With(
		zap.Int64("event_id", event.Id),
		zap.String("event_type", event.EventType),
		zap.Int64("campaign_id", event.CampaignId),
		zap.Int64("actor_id", actor),
		zap.String("from_status", string(payload.FromStatus)),
		zap.String("to_status", string(payload.ToStatus)),
		zap.Int64("amount", payload.Amount),
	).Info("Campaign audit")
	return nil
}
