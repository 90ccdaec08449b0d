package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// errStaleState 条件更新未命中，说明读到的状态已被并发事务修改
var errStaleState = errors.New("campaign state changed concurrently")

const maxStaleRetries = 3

// runInTx 在事务中执行 fn；条件更新冲突时重新读取并重试，调用方不可见
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt <= maxStaleRetries; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if !errors.Is(err, errStaleState) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxStaleRetries+1, err)
}

func loadCampaign(tx *gorm.DB, id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := tx.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "campaign %d not found", id)
		}
		return nil, fmt.Errorf("load campaign %d: %w", id, err)
	}
	return &campaign, nil
}

func loadUser(tx *gorm.DB, id int64) (*model.UserModel, error) {
	var user model.UserModel
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "user %d not found", id)
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

func loadProgressReport(tx *gorm.DB, id int64) (*model.ProgressReportModel, error) {
	var report model.ProgressReportModel
	if err := tx.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "progress report %d not found", id)
		}
		return nil, fmt.Errorf("load progress report %d: %w", id, err)
	}
	return &report, nil
}

// requireAdmin 仅管理员；allowSupport 为 true 时客服也可以
func requireAdmin(tx *gorm.DB, userId int64, allowSupport bool) (*model.UserModel, error) {
	user, err := loadUser(tx, userId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindForbidden, "user %d is not a platform administrator", userId)
		}
		return nil, err
	}
	if user.IsAdmin || (allowSupport && user.IsSupport) {
		return user, nil
	}
	return nil, newError(KindForbidden, "user %d is not a platform administrator", userId)
}

// compareAndSetStatus 仅当状态仍为读取时的值才更新
func compareAndSetStatus(tx *gorm.DB, campaign *model.CampaignModel, to model.CampaignStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := tx.Model(&model.CampaignModel{}).
		Where("id = ? AND status = ?", campaign.Id, campaign.Status).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update campaign %d status: %w", campaign.Id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errStaleState
	}
	return nil
}

func recordEvent(tx *gorm.DB, eventType string, campaignId int64, reportId, actorId *int64, payload model.EventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	event := model.EventModel{
		EventType:        eventType,
		CampaignId:       campaignId,
		ProgressReportId: reportId,
		ActorId:          actorId,
		Data:             string(data),
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("record %s event: %w", eventType, err)
	}
	return nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

// actorPtr 系统操作（定时任务）的 actor 为 0，不写入
func actorPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func timePtr(t time.Time) *time.Time {
	return &t
}
