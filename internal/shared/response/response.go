package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

// Paginate slices an already loaded list using the page and page_size query
// parameters.
func Paginate[T any](c *gin.Context, items []T) ([]T, PaginationMeta) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], NewPaginationMeta(int64(len(items)), page, pageSize)
}

type ApiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, status int, data any, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
		Meta: meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: &ErrorBody{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	Error(c, status, errorCode, message, nil)
	c.Abort()
}
