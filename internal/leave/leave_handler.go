package leave

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
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
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

func (h *Handler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	h.logger.Debug("http create leave", zap.String("employee_id", caller.EmployeeID.String()))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var q ListLeaveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	h.logger.Debug("http get all leaves",
		zap.String("employee_id", caller.EmployeeID.String()),
		zap.String("status", q.Status),
		zap.String("leave_type", q.LeaveType),
	)

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

func (h *Handler) bindReview(c *gin.Context) (ReviewLeaveRequest, bool) {
	var req ReviewLeaveRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return req, false
	}
	return req, true
}

func (h *Handler) Approve(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.logger.Debug("http approve leave", zap.String("leave_id", id))

	req, ok := h.bindReview(c)
	if !ok {
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), caller, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.logger.Debug("http reject leave", zap.String("leave_id", id))

	req, ok := h.bindReview(c)
	if !ok {
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), caller, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Backfill(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.logger.Debug("http backfill leave", zap.String("leave_id", id))

	resp, err := h.service.Backfill(c.Request.Context(), caller, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
