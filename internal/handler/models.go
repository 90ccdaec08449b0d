package handler

import (
	"time"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// 活动相关请求模型

// SubmitCampaignRequest 提交活动请求
type SubmitCampaignRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	ImageURL      string `json:"image_url"`
	GoalAmount    int64  `json:"goal_amount"`
	MinimumAmount int64  `json:"minimum_amount"`
	DurationDays  int    `json:"duration_days"`
}

func (r SubmitCampaignRequest) toInput() logic.SubmitCampaignInput {
	return logic.SubmitCampaignInput{
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Location:      r.Location,
		ImageURL:      r.ImageURL,
		GoalAmount:    r.GoalAmount,
		MinimumAmount: r.MinimumAmount,
		DurationDays:  r.DurationDays,
	}
}

// ContributionRequest 客服或管理员根据已确认的支付记录捐款
type ContributionRequest struct {
	Amount           int64  `json:"amount"`
	ContributorId    *int64 `json:"contributor_id"`
	PaymentReference string `json:"payment_reference"`
}

// ClaimFundsRequest 提款请求
type ClaimFundsRequest struct {
	Amount int64 `json:"amount"`
}

// ReasonRequest 需要填写原因的操作
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ClearFlagRequest 解除冻结请求，next_status 为空时恢复冻结前状态
type ClearFlagRequest struct {
	NextStatus model.CampaignStatus `json:"next_status"`
}

// FraudReportRequest 举报请求
type FraudReportRequest struct {
	Reason     string `json:"reason"`
	DocumentId *int64 `json:"document_id"`
}

// CampaignListResponse 活动列表响应
type CampaignListResponse struct {
	Campaigns  []model.CampaignModel `json:"campaigns"`
	Pagination Pagination            `json:"pagination"`
}

// EventListResponse 活动事件列表响应
type EventListResponse struct {
	Events     []model.EventModel `json:"events"`
	Pagination Pagination         `json:"pagination"`
}

// 进度报告相关请求模型

// CreateProgressReportRequest 创建报告请求，report_date 为空时取当前时间
type CreateProgressReportRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	ReportDate  *time.Time `json:"report_date"`
}

// AttachDocumentRequest 登记已上传附件
type AttachDocumentRequest struct {
	DocumentType model.DocumentType `json:"document_type" binding:"required"`
	FileName     string             `json:"file_name" binding:"required"`
	FileUrl      string             `json:"file_url" binding:"required"`
	FileSize     *int64             `json:"file_size"`
	MimeType     string             `json:"mime_type"`
	Description  string             `json:"description"`
}

// RatingRequest 评分请求
type RatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AttachDocumentResponse 上传附件后的附件与最新信用分
type AttachDocumentResponse struct {
	Document    *model.ProgressReportDocumentModel `json:"document"`
	CreditScore *model.UserCreditScoreModel        `json:"credit_score"`
}

// CreditScoreResponse 已存储的信用分与按当前附件重新计算的结果
type CreditScoreResponse struct {
	Stored   *model.UserCreditScoreModel `json:"stored"`
	Computed scoring.Result              `json:"computed"`
	InSync   bool                        `json:"in_sync"`
}

// NotificationListResponse 通知列表响应
type NotificationListResponse struct {
	Notifications []model.NotificationModel `json:"notifications"`
	Pagination    Pagination                `json:"pagination"`
}
