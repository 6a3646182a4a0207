package request

import (
	"errors"
	"strings"
)

var ErrInvalidSortOrder = errors.New("sort_order must be asc or desc")

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the pagination and sorting query parameters shared by list endpoints.
// Both page_size and the camelCase pageSize used by older clients are accepted.
type ListParams struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	PageSizeCamel int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	SortOrder     string `form:"sort_order"`
}

// Normalize fills defaults and folds the camelCase page size alias.
func (p *ListParams) Normalize() error {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize == 0 && p.PageSizeCamel > 0 {
		p.PageSize = p.PageSizeCamel
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}

	switch strings.ToUpper(p.SortOrder) {
	case "":
		p.SortOrder = "DESC"
	case "ASC", "DESC":
		p.SortOrder = strings.ToUpper(p.SortOrder)
	default:
		return ErrInvalidSortOrder
	}
	return nil
}
