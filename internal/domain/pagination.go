package domain

import "strings"

type Pagination struct {
	Page     int
	PageSize int
	Term     string
	Sort     string
}

func (f Pagination) SortColumn() string {
	return strings.TrimPrefix(f.Sort, "-")
}

func (f Pagination) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func (f Pagination) Limit() int {
	return f.PageSize
}

func (f Pagination) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}

func NewMetadata(totalRecords, page, pageSize int) *Metadata {
	return &Metadata{
		CurrentPage:  page,
		FirstPage:    1,
		LastPage:     (totalRecords + pageSize - 1) / pageSize,
		PageSize:     pageSize,
		TotalRecords: totalRecords,
	}
}
