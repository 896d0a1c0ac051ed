package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"

	"github.com/gin-gonic/gin"
)

// List paging bounds for JSON callers
const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Pagination is the page block of a paginated JSON list
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ParsePagination parses page and page_size, enforcing bounds and applying
// defaults when values are missing or invalid.
func ParsePagination(c *gin.Context, defaultSize, maxSize int) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

// Paginate cuts one page out of items. A page past the end is empty.
func Paginate[T any](items []T, page, size int) ([]T, Pagination) {
	p := Pagination{Page: page, PageSize: size, Total: len(items)}
	p.TotalPages = (len(items) + size - 1) / size

	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, p
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], p
}

// FiltersFromQuery reads the dashboard filters from trimmed query values
func FiltersFromQuery(c *gin.Context) dashboard.Filters {
	value := func(kind dashboard.FilterKind) string {
		return strings.TrimSpace(c.Query(string(kind)))
	}
	return dashboard.Filters{
		Status:   value(dashboard.FilterStatus),
		Tier:     value(dashboard.FilterTier),
		Priority: value(dashboard.FilterPriority),
		Category: value(dashboard.FilterCategory),
	}
}

// WritePaginated writes items with their page block and optional extras
func WritePaginated(c *gin.Context, itemsKey string, items any, pagination Pagination, extra gin.H) {
	response := gin.H{
		itemsKey:     items,
		"pagination": pagination,
	}
	for k, v := range extra {
		response[k] = v
	}
	c.JSON(http.StatusOK, response)
}
