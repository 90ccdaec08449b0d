package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/storage"
)

type ProgressReportHandler struct {
	reportLogic *logic.ProgressReportLogic
	ratingLogic *logic.RatingLogic
	uploader    storage.Uploader
	storageCfg  config.StorageConfig
}

func NewProgressReportHandler(db *gorm.DB, catalog scoring.Catalog, uploader storage.Uploader, storageCfg config.StorageConfig) *ProgressReportHandler {
	return &ProgressReportHandler{
		reportLogic: logic.NewProgressReportLogic(db, catalog),
		ratingLogic: logic.NewRatingLogic(db),
		uploader:    uploader,
		storageCfg:  storageCfg,
	}
}

// CreateProgressReport 创建进度报告
func (h *ProgressReportHandler) CreateProgressReport(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req CreateProgressReportRequest
	if !bindJSON(c, &req) {
		return
	}

	input := logic.CreateProgressReportInput{Title: req.Title, Description: req.Description}
	if req.ReportDate != nil {
		input.ReportDate = *req.ReportDate
	}
	report, err := h.reportLogic.CreateProgressReport(c.Request.Context(), userId, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Progress report created", report)
}

// GetCampaignReports 活动下的进度报告
func (h *ProgressReportHandler) GetCampaignReports(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reports, err := h.reportLogic.ListCampaignReports(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", reports)
}

// GetProgressReport 报告详情
func (h *ProgressReportHandler) GetProgressReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.reportLogic.GetProgressReport(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", detail)
}

// AttachDocument 登记客户端已上传的附件
func (h *ProgressReportHandler) AttachDocument(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req AttachDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	document, score, err := h.reportLogic.AttachDocument(c.Request.Context(), userId, id, logic.AttachDocumentInput{
		DocumentType: req.DocumentType,
		FileName:     req.FileName,
		FileUrl:      req.FileUrl,
		FileSize:     req.FileSize,
		MimeType:     req.MimeType,
		Description:  req.Description,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Document attached", AttachDocumentResponse{Document: document, CreditScore: score})
}

// UploadDocument 接收 multipart 文件，上传到对象存储后登记为附件。
// 登记失败时删除已上传的对象。
func (h *ProgressReportHandler) UploadDocument(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	documentType := model.DocumentType(c.PostForm("document_type"))
	if documentType == "" {
		ErrorResponse(c, http.StatusBadRequest, "document_type is required")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size == 0 {
		ErrorResponse(c, http.StatusBadRequest, "file is empty")
		return
	}
	if limit := h.storageCfg.MaxFileSize; limit > 0 && fileHeader.Size > limit {
		ErrorResponse(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", limit))
		return
	}

	ctx := c.Request.Context()
	if err := h.reportLogic.CanAttach(ctx, userId, id, documentType); err != nil {
		HandleError(c, err)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		HandleError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		HandleError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	file, err := storage.Prepare(fileHeader.Filename, data, h.storageCfg.ImageMaxEdge)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	key := storage.ObjectKey(h.storageCfg.Folder, file.Extension, time.Now())
	fileURL, err := h.uploader.Upload(ctx, key, bytes.NewReader(file.Data), file.ContentType)
	if err != nil {
		HandleError(c, err)
		return
	}

	size := file.Size()
	document, score, err := h.reportLogic.AttachDocument(ctx, userId, id, logic.AttachDocumentInput{
		DocumentType: documentType,
		FileName:     fileHeader.Filename,
		FileUrl:      fileURL,
		FileSize:     &size,
		MimeType:     file.ContentType,
		Description:  c.PostForm("description"),
	})
	if err != nil {
		if delErr := h.uploader.Delete(ctx, fileURL); delErr != nil {
			logger.Warn("Failed to delete orphaned upload %s from %s: %v", fileURL, h.uploader.Name(), delErr)
		}
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Document uploaded", AttachDocumentResponse{Document: document, CreditScore: score})
}

// GetCreditScore 已存储的信用分，并附带按当前附件重新计算的结果用于核对
func (h *ProgressReportHandler) GetCreditScore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	stored, err := h.reportLogic.GetCreditScore(ctx, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	computed, err := h.reportLogic.ComputeCreditScore(ctx, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", CreditScoreResponse{
		Stored:   stored,
		Computed: computed,
		InSync:   sameScore(stored, computed),
	})
}

// sameScore 存储值与重算结果完全一致，附件类型按集合比较
func sameScore(stored *model.UserCreditScoreModel, computed scoring.Result) bool {
	if stored.ScorePercentage != computed.ScorePercentage ||
		stored.TotalRequiredTypes != computed.TotalRequiredTypes ||
		stored.CatalogVersion != computed.CatalogVersion {
		return false
	}
	have := slices.Clone(stored.CompletedDocumentTypes)
	want := slices.Clone(computed.CompletedDocumentTypes)
	slices.Sort(have)
	slices.Sort(want)
	return slices.Equal(have, want)
}

// RateReport 为报告评分
func (h *ProgressReportHandler) RateReport(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	var req RatingRequest
	if !bindJSON(c, &req) {
		return
	}
	rating, err := h.ratingLogic.RateReport(c.Request.Context(), userId, id, req.Rating, req.Comment)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Rating submitted", rating)
}
