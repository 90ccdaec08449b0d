package scoring

import (
	"fmt"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// Catalog 评分所用的附件类型目录，带版本号以便历史分数可复现
type Catalog struct {
	Version string
	Types   []model.DocumentType
}

// CatalogV1 当前平台目录，共 8 类
var CatalogV1 = Catalog{
	Version: "v1",
	Types:   model.AllDocumentTypes,
}

var catalogs = map[string]Catalog{
	CatalogV1.Version: CatalogV1,
}

// DefaultCatalog 默认目录
func DefaultCatalog() Catalog {
	return CatalogV1
}

// LookupCatalog 按版本号查找目录
func LookupCatalog(version string) (Catalog, error) {
	if version == "" {
		return DefaultCatalog(), nil
	}
	catalog, ok := catalogs[version]
	if !ok {
		return Catalog{}, fmt.Errorf("unknown document catalog version %q", version)
	}
	return catalog, nil
}

// Contains 类型是否在目录中
func (c Catalog) Contains(t model.DocumentType) bool {
	for _, known := range c.Types {
		if known == t {
			return true
		}
	}
	return false
}

// Total 分母
func (c Catalog) Total() int {
	return len(c.Types)
}
