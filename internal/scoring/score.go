package scoring

import (
	"math"
	"sort"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// Result 信用分计算结果
type Result struct {
	ScorePercentage        int                  `json:"score_percentage"`
	CompletedDocumentTypes []model.DocumentType `json:"completed_document_types"`
	TotalRequiredTypes     int                  `json:"total_required_types"`
	CatalogVersion         string               `json:"catalog_version"`
}

// Compute 根据报告下所有附件的类型计算信用分。
// 只统计目录内出现过的不同类型，重复类型与上传顺序不影响结果。
func Compute(catalog Catalog, documentTypes []model.DocumentType) Result {
	seen := make(map[model.DocumentType]struct{}, len(documentTypes))
	present := make([]model.DocumentType, 0, len(documentTypes))
	for _, t := range documentTypes {
		if !catalog.Contains(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		present = append(present, t)
	}
	sort.Slice(present, func(i, j int) bool { return present[i] < present[j] })

	total := catalog.Total()
	return Result{
		ScorePercentage:        Percentage(len(present), total),
		CompletedDocumentTypes: present,
		TotalRequiredTypes:     total,
		CatalogVersion:         catalog.Version,
	}
}

// Percentage round(100*present/total)，限制在 [0,100]
func Percentage(present, total int) int {
	if total <= 0 || present <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(present) / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}
