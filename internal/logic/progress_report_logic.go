package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
)

const maxReportTitleLength = 200

// ProgressReportLogic 进度报告、附件与信用分
type ProgressReportLogic struct {
	db      *gorm.DB
	catalog scoring.Catalog
}

// NewProgressReportLogic 创建进度报告业务逻辑，新报告使用 catalog 计分
func NewProgressReportLogic(db *gorm.DB, catalog scoring.Catalog) *ProgressReportLogic {
	return &ProgressReportLogic{db: db, catalog: catalog}
}

// CreateProgressReportInput 创建报告参数
type CreateProgressReportInput struct {
	Title       string
	Description string
	ReportDate  time.Time
}

// AttachDocumentInput 附件参数，FileUrl 为已上传到对象存储的地址
type AttachDocumentInput struct {
	DocumentType model.DocumentType
	FileName     string
	FileUrl      string
	FileSize     *int64
	MimeType     string
	Description  string
}

// ProgressReportDetail 报告详情
type ProgressReportDetail struct {
	Report        model.ProgressReportModel           `json:"report"`
	Documents     []model.ProgressReportDocumentModel `json:"documents"`
	CreditScore   *model.UserCreditScoreModel         `json:"credit_score"`
	AverageRating float64                             `json:"average_rating"`
	RatingCount   int64                               `json:"rating_count"`
}

// CreditSummary 创建者信用汇总
type CreditSummary struct {
	UserId        int64   `json:"user_id"`
	ReportCount   int64   `json:"report_count"`
	AverageScore  float64 `json:"average_score"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

// CreateProgressReport 创建者在 on_progress 活动下创建报告，同时生成初始信用分
func (l *ProgressReportLogic) CreateProgressReport(ctx context.Context, creatorId, campaignId int64, in CreateProgressReportInput) (*model.ProgressReportModel, error) {
	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n == 0 || n > maxReportTitleLength {
		return nil, newError(KindInvalidInput, "title must be between 1 and %d characters", maxReportTitleLength)
	}
	reportDate := in.ReportDate
	if reportDate.IsZero() {
		reportDate = time.Now()
	}

	report := &model.ProgressReportModel{
		CampaignId:  campaignId,
		CreatedById: creatorId,
		Title:       title,
		Description: in.Description,
		ReportDate:  reportDate.UTC(),
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := loadCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if campaign.CreatorId != creatorId {
			return newError(KindForbidden, "only the creator of campaign %d can post progress reports", campaign.Id)
		}
		if !allowsReportCreation(campaign.Status) {
			if IsTerminal(campaign.Status) {
				return newError(KindReportClosed, "campaign %d is %s", campaign.Id, campaign.Status)
			}
			return newError(KindInvalidTransition, "campaign %d is %s; reports can only be created while on_progress",
				campaign.Id, campaign.Status)
		}

		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("create progress report: %w", err)
		}

		initial := scoring.Compute(l.catalog, nil)
		score := model.UserCreditScoreModel{
			UserId:                 creatorId,
			CampaignId:             campaign.Id,
			ProgressReportId:       report.Id,
			ScorePercentage:        initial.ScorePercentage,
			CompletedDocumentTypes: initial.CompletedDocumentTypes,
			TotalRequiredTypes:     initial.TotalRequiredTypes,
			CatalogVersion:         initial.CatalogVersion,
		}
		if err := tx.Create(&score).Error; err != nil {
			return fmt.Errorf("create credit score: %w", err)
		}

		return recordEvent(tx, model.EventReportCreated, campaign.Id, int64Ptr(report.Id), int64Ptr(creatorId),
			model.EventPayload{Title: report.Title})
	})
	if err != nil {
		logger.Warn("Progress report for campaign %d by user %d rejected: %v", campaignId, creatorId, err)
		return nil, err
	}

	logger.Info("Progress report %d created for campaign %d", report.Id, campaignId)
	return report, nil
}

// AttachDocument 上传附件并在同一事务内重新计算信用分
func (l *ProgressReportLogic) AttachDocument(ctx context.Context, actorId, reportId int64, in AttachDocumentInput) (*model.ProgressReportDocumentModel, *model.UserCreditScoreModel, error) {
	if !l.catalog.Contains(in.DocumentType) {
		return nil, nil, newError(KindInvalidDocumentType, "document type %q is not in catalog %s", in.DocumentType, l.catalog.Version)
	}
	if strings.TrimSpace(in.FileName) == "" || strings.TrimSpace(in.FileUrl) == "" {
		return nil, nil, newError(KindInvalidInput, "file name and file url are required")
	}

	var document *model.ProgressReportDocumentModel
	var score *model.UserCreditScoreModel
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, campaign, err := checkAttach(tx, actorId, reportId)
		if err != nil {
			return err
		}

		document = &model.ProgressReportDocumentModel{
			ProgressReportId: report.Id,
			DocumentType:     in.DocumentType,
			FileName:         strings.TrimSpace(in.FileName),
			FileUrl:          strings.TrimSpace(in.FileUrl),
			FileSize:         in.FileSize,
			MimeType:         in.MimeType,
			Description:      in.Description,
		}
		if err := tx.Create(document).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}

		score, err = l.recompute(tx, report)
		if err != nil {
			return err
		}
		return recordEvent(tx, model.EventScoreRecomputed, campaign.Id, int64Ptr(report.Id), int64Ptr(actorId),
			model.EventPayload{ScorePercentage: score.ScorePercentage, DocumentType: in.DocumentType})
	})
	if err != nil {
		logger.Warn("Document upload to report %d by user %d rejected: %v", reportId, actorId, err)
		return nil, nil, err
	}

	logger.Info("Document %d (%s) attached to report %d, score %d%%",
		document.Id, document.DocumentType, reportId, score.ScorePercentage)
	return document, score, nil
}

// CanAttach 在文件写入存储之前检查附件能否被接受，规则与 AttachDocument 相同
func (l *ProgressReportLogic) CanAttach(ctx context.Context, actorId, reportId int64, documentType model.DocumentType) error {
	if !l.catalog.Contains(documentType) {
		return newError(KindInvalidDocumentType, "document type %q is not in catalog %s", documentType, l.catalog.Version)
	}
	_, _, err := checkAttach(l.db.WithContext(ctx), actorId, reportId)
	return err
}

// checkAttach 报告存在、活动仍接受附件、操作者为报告创建者或管理员
func checkAttach(tx *gorm.DB, actorId, reportId int64) (*model.ProgressReportModel, *model.CampaignModel, error) {
	report, err := loadProgressReport(tx, reportId)
	if err != nil {
		return nil, nil, err
	}
	campaign, err := loadCampaign(tx, report.CampaignId)
	if err != nil {
		return nil, nil, err
	}
	if IsTerminal(campaign.Status) || !allowsDocumentUpload(campaign.Status) {
		return nil, nil, newError(KindReportClosed, "campaign %d is %s and no longer accepts documents", campaign.Id, campaign.Status)
	}
	if report.CreatedById != actorId {
		if _, err := requireAdmin(tx, actorId, false); err != nil {
			return nil, nil, newError(KindForbidden, "only the report creator or an administrator can attach documents")
		}
	}
	return report, campaign, nil
}

// recompute 先锁定信用分行，再读取全部附件类型，保证并发上传时后提交者看到先提交者的附件
func (l *ProgressReportLogic) recompute(tx *gorm.DB, report *model.ProgressReportModel) (*model.UserCreditScoreModel, error) {
	res := tx.Model(&model.UserCreditScoreModel{}).
		Where("progress_report_id = ?", report.Id).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return nil, fmt.Errorf("lock credit score of report %d: %w", report.Id, res.Error)
	}

	var score model.UserCreditScoreModel
	if res.RowsAffected == 0 {
		// 历史数据可能缺少信用分行
		score = model.UserCreditScoreModel{
			UserId:           report.CreatedById,
			CampaignId:       report.CampaignId,
			ProgressReportId: report.Id,
			CatalogVersion:   l.catalog.Version,
		}
	} else if err := tx.Where("progress_report_id = ?", report.Id).First(&score).Error; err != nil {
		return nil, fmt.Errorf("load credit score of report %d: %w", report.Id, err)
	}

	catalog, err := scoring.LookupCatalog(score.CatalogVersion)
	if err != nil {
		return nil, err
	}
	types, err := documentTypes(tx, report.Id)
	if err != nil {
		return nil, err
	}
	result := scoring.Compute(catalog, types)

	score.ScorePercentage = result.ScorePercentage
	score.CompletedDocumentTypes = result.CompletedDocumentTypes
	score.TotalRequiredTypes = result.TotalRequiredTypes
	score.CatalogVersion = result.CatalogVersion
	if err := tx.Save(&score).Error; err != nil {
		return nil, fmt.Errorf("save credit score of report %d: %w", report.Id, err)
	}
	return &score, nil
}

func documentTypes(tx *gorm.DB, reportId int64) ([]model.DocumentType, error) {
	var types []model.DocumentType
	if err := tx.Model(&model.ProgressReportDocumentModel{}).
		Where("progress_report_id = ?", reportId).
		Pluck("document_type", &types).Error; err != nil {
		return nil, fmt.Errorf("load document types of report %d: %w", reportId, err)
	}
	return types, nil
}

// ComputeCreditScore 只读计算，不写库，用于核对已存储的分数
func (l *ProgressReportLogic) ComputeCreditScore(ctx context.Context, reportId int64) (scoring.Result, error) {
	db := l.db.WithContext(ctx)
	if _, err := loadProgressReport(db, reportId); err != nil {
		return scoring.Result{}, err
	}

	catalog := l.catalog
	var stored model.UserCreditScoreModel
	err := db.Where("progress_report_id = ?", reportId).First(&stored).Error
	switch {
	case err == nil:
		if catalog, err = scoring.LookupCatalog(stored.CatalogVersion); err != nil {
			return scoring.Result{}, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return scoring.Result{}, fmt.Errorf("load credit score of report %d: %w", reportId, err)
	}

	types, err := documentTypes(db, reportId)
	if err != nil {
		return scoring.Result{}, err
	}
	return scoring.Compute(catalog, types), nil
}

// GetCreditScore 获取报告已存储的信用分
func (l *ProgressReportLogic) GetCreditScore(ctx context.Context, reportId int64) (*model.UserCreditScoreModel, error) {
	var score model.UserCreditScoreModel
	if err := l.db.WithContext(ctx).Where("progress_report_id = ?", reportId).First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "credit score for progress report %d not found", reportId)
		}
		return nil, fmt.Errorf("load credit score of report %d: %w", reportId, err)
	}
	return &score, nil
}

// GetProgressReport 获取报告详情：附件、信用分与评分汇总
func (l *ProgressReportLogic) GetProgressReport(ctx context.Context, reportId int64) (*ProgressReportDetail, error) {
	db := l.db.WithContext(ctx)
	report, err := loadProgressReport(db, reportId)
	if err != nil {
		return nil, err
	}

	detail := &ProgressReportDetail{Report: *report}
	if err := db.Where("progress_report_id = ?", reportId).Order("id").Find(&detail.Documents).Error; err != nil {
		return nil, fmt.Errorf("load documents of report %d: %w", reportId, err)
	}
	if score, err := l.GetCreditScore(ctx, reportId); err == nil {
		detail.CreditScore = score
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if detail.AverageRating, detail.RatingCount, err = ratingSummary(db, "progress_report_id = ?", reportId); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListCampaignReports 活动下的全部报告，按报告日期倒序
func (l *ProgressReportLogic) ListCampaignReports(ctx context.Context, campaignId int64) ([]ProgressReportDetail, error) {
	db := l.db.WithContext(ctx)
	if _, err := loadCampaign(db, campaignId); err != nil {
		return nil, err
	}

	var reports []model.ProgressReportModel
	if err := db.Where("campaign_id = ?", campaignId).Order("report_date DESC, id DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports of campaign %d: %w", campaignId, err)
	}

	details := make([]ProgressReportDetail, 0, len(reports))
	for _, report := range reports {
		detail, err := l.GetProgressReport(ctx, report.Id)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// GetCreatorCreditSummary 创建者所有报告的平均信用分与平均评分
func (l *ProgressReportLogic) GetCreatorCreditSummary(ctx context.Context, userId int64) (*CreditSummary, error) {
	db := l.db.WithContext(ctx)
	if _, err := loadUser(db, userId); err != nil {
		return nil, err
	}

	summary := &CreditSummary{UserId: userId}
	if err := db.Model(&model.UserCreditScoreModel{}).Where("user_id = ?", userId).Count(&summary.ReportCount).Error; err != nil {
		return nil, fmt.Errorf("count credit scores: %w", err)
	}
	if err := db.Model(&model.UserCreditScoreModel{}).
		Where("user_id = ?", userId).
		Select("COALESCE(AVG(score_percentage), 0)").
		Scan(&summary.AverageScore).Error; err != nil {
		return nil, fmt.Errorf("average credit score: %w", err)
	}

	var err error
	summary.AverageRating, summary.RatingCount, err = ratingSummary(db,
		"progress_report_id IN (?)", db.Model(&model.ProgressReportModel{}).Select("id").Where("created_by_id = ?", userId))
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func ratingSummary(db *gorm.DB, query string, args ...interface{}) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	if err := db.Model(&model.CreatorRatingModel{}).
		Where(query, args...).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Scan(&row).Error; err != nil {
		return 0, 0, fmt.Errorf("summarize ratings: %w", err)
	}
	return row.Average, row.Total, nil
}
