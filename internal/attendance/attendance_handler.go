package attendance

import (
	"errors"
	"io"
	"net/http"

	"go-workforce/internal/access"
	"go-workforce/internal/middleware"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/i18n"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
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

// bindGeo accepts an empty body since the geo tag is optional.
func (h *Handler) bindGeo(c *gin.Context) (GeoTagRequest, bool) {
	var req GeoTagRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("http attendance geo tag validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return req, false
	}
	return req, true
}

func (h *Handler) CheckIn(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	h.logger.Debug("http check in", zap.String("employee_id", caller.EmployeeID.String()))

	req, ok := h.bindGeo(c)
	if !ok {
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	h.logger.Debug("http check out", zap.String("employee_id", caller.EmployeeID.String()))

	req, ok := h.bindGeo(c)
	if !ok {
		return
	}

	resp, err := h.service.CheckOut(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetToday(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	resp, err := h.service.GetToday(c.Request.Context(), caller)
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

	var q ListAttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	h.logger.Debug("http get all attendances",
		zap.String("employee_id", caller.EmployeeID.String()),
		zap.String("filter_employee_id", q.EmployeeID),
		zap.String("from", q.From),
		zap.String("to", q.To),
	)

	resp, err := h.service.List(c.Request.Context(), caller, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, resp)
	response.Success(c, http.StatusOK, page, &meta)
}

func (h *Handler) SetStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http set attendance status validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.SetStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
