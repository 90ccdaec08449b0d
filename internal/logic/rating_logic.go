package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

const (
	minRating = 1
	maxRating = 5
)

// RatingLogic 进度报告评分
type RatingLogic struct {
	db *gorm.DB
}

// NewRatingLogic 创建评分业务逻辑
func NewRatingLogic(db *gorm.DB) *RatingLogic {
	return &RatingLogic{db: db}
}

// RateReport 对报告评分，每个评分人每份报告只能评一次
func (l *RatingLogic) RateReport(ctx context.Context, raterId, reportId int64, rating int, comment string) (*model.CreatorRatingModel, error) {
	if rating < minRating || rating > maxRating {
		return nil, newError(KindInvalidInput, "rating must be between %d and %d", minRating, maxRating)
	}

	record := &model.CreatorRatingModel{
		RaterId:          raterId,
		ProgressReportId: reportId,
		Rating:           rating,
		Comment:          strings.TrimSpace(comment),
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, err := loadProgressReport(tx, reportId)
		if err != nil {
			return err
		}
		if _, err := loadUser(tx, raterId); err != nil {
			return err
		}
		if report.CreatedById == raterId {
			return newError(KindForbidden, "creators cannot rate their own progress reports")
		}
		if existing, err := findRating(tx, raterId, reportId); err != nil {
			return err
		} else if existing != nil {
			return &AlreadyRatedError{RaterId: raterId, ProgressReportId: reportId, ExistingRating: existing.Rating}
		}

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("create rating: %w", err)
		}
		return recordEvent(tx, model.EventReportRated, report.CampaignId, int64Ptr(report.Id), int64Ptr(raterId),
			model.EventPayload{Rating: rating})
	})
	if err != nil {
		if KindOf(err) == "" {
			// 并发插入触发唯一索引时，事务已回滚，在事务外重新读取已有评分
			if existing, findErr := findRating(l.db.WithContext(ctx), raterId, reportId); findErr == nil && existing != nil {
				return nil, &AlreadyRatedError{RaterId: raterId, ProgressReportId: reportId, ExistingRating: existing.Rating}
			}
		}
		return nil, err
	}

	logger.Info("User %d rated progress report %d with %d", raterId, reportId, rating)
	return record, nil
}

// GetRating 获取某评分人对报告的评分，不存在时返回 NotFound
func (l *RatingLogic) GetRating(ctx context.Context, raterId, reportId int64) (*model.CreatorRatingModel, error) {
	existing, err := findRating(l.db.WithContext(ctx), raterId, reportId)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, newError(KindNotFound, "user %d has not rated progress report %d", raterId, reportId)
	}
	return existing, nil
}

func findRating(db *gorm.DB, raterId, reportId int64) (*model.CreatorRatingModel, error) {
	var existing model.CreatorRatingModel
	err := db.Where("rater_id = ? AND progress_report_id = ?", raterId, reportId).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rating: %w", err)
	}
	return &existing, nil
}
