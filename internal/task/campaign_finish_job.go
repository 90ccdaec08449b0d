package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
)

// CampaignFinishJob 到期活动完成任务：on_progress 且已过结束时间的活动标记为 completed。
// 冻结的活动不会被自动处理。
type CampaignFinishJob struct {
	campaigns *logic.CampaignLogic
	interval  time.Duration
	now       func() time.Time
}

// NewCampaignFinishJob 创建活动完成任务
func NewCampaignFinishJob(campaigns *logic.CampaignLogic, interval time.Duration) *CampaignFinishJob {
	return &CampaignFinishJob{
		campaigns: campaigns,
		interval:  interval,
		now:       time.Now,
	}
}

// GetName 获取任务名称
func (j *CampaignFinishJob) GetName() string {
	return "campaign_finish_updater"
}

// GetSchedule 获取调度配置
func (j *CampaignFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *CampaignFinishJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	finished, err := j.campaigns.FinishExpiredCampaigns(ctx, j.now())
	if err != nil {
		logger.Error("Campaign finish task failed: %v", err)
		return
	}
	if finished > 0 {
		logger.Info("Campaign finish task completed. Finished %d campaigns", finished)
	}
}
