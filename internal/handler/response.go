package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/middleware"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/storage"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// HandleError 把业务错误映射为 HTTP 状态码，未知错误统一返回 500
func HandleError(c *gin.Context, err error) {
	var rated *logic.AlreadyRatedError
	if errors.As(err, &rated) {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Message: err.Error(),
			Data:    gin.H{"existing_rating": rated.ExistingRating},
		})
		return
	}

	switch logic.KindOf(err) {
	case logic.KindInvalidAmount, logic.KindInvalidDocumentType, logic.KindInvalidInput:
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	case logic.KindForbidden:
		ErrorResponse(c, http.StatusForbidden, err.Error())
		return
	case logic.KindNotFound:
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	case logic.KindInvalidTransition, logic.KindAlreadyRated, logic.KindReportClosed:
		ErrorResponse(c, http.StatusConflict, err.Error())
		return
	case logic.KindInsufficientClaimableAmount:
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var unsupported *storage.UnsupportedTypeError
	switch {
	case errors.As(err, &unsupported):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrStorageDisabled):
		ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserId(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON 请求体可以为空
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}
