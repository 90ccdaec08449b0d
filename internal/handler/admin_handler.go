package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
)

// AdminHandler 审核与冻结相关操作，角色校验在 logic 层完成
type AdminHandler struct {
	campaignLogic *logic.CampaignLogic
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		campaignLogic: logic.NewCampaignLogic(db),
	}
}

// ClaimReview 认领待审核活动
func (h *AdminHandler) ClaimReview(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	campaign, err := h.campaignLogic.ClaimReview(c.Request.Context(), userId, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Campaign claimed for review", campaign)
}

// Approve 审核通过
func (h *AdminHandler) Approve(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	campaign, err := h.campaignLogic.Approve(c.Request.Context(), userId, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Campaign approved", campaign)
}

// Reject 审核拒绝
func (h *AdminHandler) Reject(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.campaignLogic.Reject(c.Request.Context(), userId, id, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Campaign rejected", campaign)
}

// Flag 冻结活动
func (h *AdminHandler) Flag(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	campaign, err := h.campaignLogic.Flag(c.Request.Context(), userId, id, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Campaign flagged", campaign)
}

// ClearFlag 解除冻结
func (h *AdminHandler) ClearFlag(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ClearFlagRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	campaign, err := h.campaignLogic.ClearFlag(c.Request.Context(), userId, id, req.NextStatus)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Flag cleared", campaign)
}

// UpholdFlag 维持举报结论并拒绝活动
func (h *AdminHandler) UpholdFlag(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.campaignLogic.UpholdFlag(c.Request.Context(), userId, id, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Flag upheld", campaign)
}

// CloseWithRefund 关闭并退款
func (h *AdminHandler) CloseWithRefund(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	campaign, err := h.campaignLogic.CloseWithRefund(c.Request.Context(), userId, id, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Campaign closed with refund", campaign)
}

func actorAndTarget(c *gin.Context) (int64, int64, bool) {
	userId, ok := currentUser(c)
	if !ok {
		return 0, 0, false
	}
	id, ok := parseID(c, "id")
	return userId, id, ok
}
