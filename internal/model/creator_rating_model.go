package model

import (
	"time"
)

// CreatorRatingModel 对进度报告的评分，每个评分人每份报告仅一次
type CreatorRatingModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RaterId          int64  `json:"rater_id" gorm:"not null;uniqueIndex:idx_rating_rater_report"`
	ProgressReportId int64  `json:"progress_report_id" gorm:"not null;uniqueIndex:idx_rating_rater_report"`
	Rating           int    `json:"rating" gorm:"not null"`
	Comment          string `json:"comment" gorm:"type:text"`
}

// TableName 自定义表名
func (CreatorRatingModel) TableName() string {
	return "creator_rating"
}
