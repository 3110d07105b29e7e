package persistence

import (
	"fmt"
	"strings"

	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"gorm.io/gorm"
)

// allowed sort columns, anything else falls back to created_at
var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"code":       true,
	"model_no":   true,
	"count":      true,
	"position":   true,
	"reference":  true,
}

// applyFilter applies pagination and ordering from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !sortableColumns[orderBy] {
		orderBy = "created_at"
	}
	orderDir := "desc"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// paginate runs the count-then-page pattern shared by list queries
func paginate[T any](query *gorm.DB, filter shared.Filter) (shared.Paginated[T], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[T]{}, err
	}

	var items []T
	if err := applyFilter(query, filter).Find(&items).Error; err != nil {
		return shared.Paginated[T]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}
