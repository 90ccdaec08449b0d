package model

import (
	"time"
)

// ProgressReportDocumentModel 进度报告附件
type ProgressReportDocumentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProgressReportId int64        `json:"progress_report_id" gorm:"not null;index"`
	DocumentType     DocumentType `json:"document_type" gorm:"size:40;not null"`
	FileName         string       `json:"file_name" gorm:"not null"`
	FileUrl          string       `json:"file_url" gorm:"type:text;not null"`
	FileSize         *int64       `json:"file_size"`
	MimeType         string       `json:"mime_type"`
	Description      string       `json:"description" gorm:"type:text"`
}

// DocumentType 附件类型
type DocumentType string

const (
	DocumentTypeImage                  DocumentType = "image"
	DocumentTypeVideoLink              DocumentType = "video_link"
	DocumentTypeOfficialReceipt        DocumentType = "official_receipt"
	DocumentTypeAcknowledgementReceipt DocumentType = "acknowledgement_receipt"
	DocumentTypeExpenseSummary         DocumentType = "expense_summary"
	DocumentTypeInvoice                DocumentType = "invoice"
	DocumentTypeContract               DocumentType = "contract"
	DocumentTypeOther                  DocumentType = "other"
)

// AllDocumentTypes 附件类型全集
var AllDocumentTypes = []DocumentType{
	DocumentTypeImage,
	DocumentTypeVideoLink,
	DocumentTypeOfficialReceipt,
	DocumentTypeAcknowledgementReceipt,
	DocumentTypeExpenseSummary,
	DocumentTypeInvoice,
	DocumentTypeContract,
	DocumentTypeOther,
}

// TableName 自定义表名
func (ProgressReportDocumentModel) TableName() string {
	return "progress_report_document"
}
