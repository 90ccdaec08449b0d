package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
	userLogic     *logic.UserLogic
	eventLogic    *logic.EventLogic
}

func NewCampaignHandler(db *gorm.DB) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: logic.NewCampaignLogic(db),
		userLogic:     logic.NewUserLogic(db),
		eventLogic:    logic.NewEventLogic(db),
	}
}

// SubmitCampaign 提交活动
func (h *CampaignHandler) SubmitCampaign(c *gin.Context) {
	userId, ok := currentUser(c)
	if !ok {
		return
	}
	var req SubmitCampaignRequest
	if !bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaignLogic.SubmitCampaign(c.Request.Context(), userId, req.toInput())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Campaign submitted", campaign)
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := logic.CampaignFilter{
		Status:   model.CampaignStatus(c.Query("status")),
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
	}
	if creator := c.Query("creator_id"); creator != "" {
		id, err := strconv.ParseInt(creator, 10, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "invalid creator_id")
			return
		}
		filter.CreatorId = id
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		ErrorResponse(c, http.StatusBadRequest, "unknown status "+string(filter.Status))
		return
	}

	campaigns, total, err := h.campaignLogic.ListCampaigns(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", CampaignListResponse{
		Campaigns:  campaigns,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignLogic.GetCampaign(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", campaign)
}

// GetCampaignStats 获取活动统计
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stats, err := h.campaignLogic.GetCampaignStats(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", stats)
}

// RecordContribution 管理员与客服根据支付回调登记捐款，必须带支付流水号，
// 可指定捐款人或匿名。普通用户无权调用。
func (h *CampaignHandler) RecordContribution(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ContributionRequest
	if !bindJSON(c, &req) {
		return
	}

	caller, err := h.userLogic.GetUser(c.Request.Context(), userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !caller.IsStaff() {
		ErrorResponse(c, http.StatusForbidden, "only staff can record confirmed payments")
		return
	}
	if strings.TrimSpace(req.PaymentReference) == "" {
		ErrorResponse(c, http.StatusBadRequest, "payment_reference is required")
		return
	}

	campaign, err := h.campaignLogic.RecordContribution(c.Request.Context(), id, req.Amount, logic.ContributionInput{
		ContributorId:    req.ContributorId,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Contribution recorded", campaign)
}

// ClaimFunds 创建者提款
func (h *CampaignHandler) ClaimFunds(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ClaimFundsRequest
	if !bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaignLogic.ClaimFunds(c.Request.Context(), userId, id, req.Amount)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Funds claimed", campaign)
}

// CancelCampaign 取消活动
func (h *CampaignHandler) CancelCampaign(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	campaign, err := h.campaignLogic.Cancel(c.Request.Context(), userId, id, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Campaign cancelled", campaign)
}

// StartProgress 手动进入执行阶段
func (h *CampaignHandler) StartProgress(c *gin.Context) {
	h.simpleTransition(c, h.campaignLogic.StartProgress, "Campaign in progress")
}

// CompleteCampaign 标记活动完成
func (h *CampaignHandler) CompleteCampaign(c *gin.Context) {
	h.simpleTransition(c, h.campaignLogic.MarkCompleted, "Campaign completed")
}

func (h *CampaignHandler) simpleTransition(
	c *gin.Context,
	fn func(ctx context.Context, actorId, campaignId int64) (*model.CampaignModel, error),
	message string,
) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	campaign, err := fn(c.Request.Context(), userId, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, message, campaign)
}

// ReportFraud 举报活动
func (h *CampaignHandler) ReportFraud(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req FraudReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.campaignLogic.ReportFraud(c.Request.Context(), userId, id, req.DocumentId, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Fraud report submitted", report)
}

// GetCampaignEvents 活动生命周期事件
func (h *CampaignHandler) GetCampaignEvents(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	if _, err := h.campaignLogic.GetCampaign(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	events, total, err := h.eventLogic.ListCampaignEvents(c.Request.Context(), id, c.Query("event_type"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", EventListResponse{
		Events:     events,
		Pagination: newPagination(page, pageSize, total),
	})
}
