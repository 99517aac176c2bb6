package payroll

import (
	"net/http"
	"time"

	"go-workforce/internal/access"
	"go-workforce/internal/middleware"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/i18n"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("payroll request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	msg := i18n.Translate(c.Request.Context(), httpErr.Code, httpErr.Message)
	response.Error(c, httpErr.Status, httpErr.Code, msg, httpErr.Details)
}

func (h *Handler) caller(c *gin.Context) (access.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
	}
	return caller, ok
}

func (h *Handler) Upsert(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req UpsertPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http upsert payroll validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Upsert(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.logger.Debug("http update payroll", zap.String("payroll_id", id))

	var req UpdatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var q ListPayrollQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.List(c.Request.Context(), caller, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, resp)
	response.Success(c, http.StatusOK, page, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Export(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var q ListPayrollQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	body, err := h.service.Export(c.Request.Context(), caller, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filename := "payroll-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, body)
}
