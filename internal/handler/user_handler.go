package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
)

type UserHandler struct {
	userLogic   *logic.UserLogic
	reportLogic *logic.ProgressReportLogic
}

func NewUserHandler(db *gorm.DB, catalog scoring.Catalog) *UserHandler {
	return &UserHandler{
		userLogic:   logic.NewUserLogic(db),
		reportLogic: logic.NewProgressReportLogic(db, catalog),
	}
}

// GetMe 当前用户
func (h *UserHandler) GetMe(c *gin.Context) {
	userId, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userLogic.GetUser(c.Request.Context(), userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", user)
}

// GetCreditSummary 创建者信用汇总
func (h *UserHandler) GetCreditSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.reportLogic.GetCreatorCreditSummary(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", summary)
}
