package employee

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const profileImageField = "profileImage"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	}
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("employee request failed", append(fields, zap.Error(err))...)
	} else {
		h.logger.Warn("employee request failed", fields...)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetAll(c *gin.Context) {
	q := ParseListQuery(c.Query("search"), c.Query("page"), c.Query("limit"))
	h.logger.Debug("http list employees",
		zap.String("search", q.Search),
		zap.Int("page", q.Page),
		zap.Int("limit", q.Limit),
	)

	resp, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http get employee by id", zap.String("employee_id", id))

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", resp)
}

func (h *Handler) ProfileImage(c *gin.Context) {
	id := c.Param("id")

	rc, contentType, err := h.service.OpenProfileImage(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *Handler) Create(c *gin.Context) {
	req, cleanup, err := h.bindEmployeeRequest(c)
	if err != nil {
		h.logger.Warn("http create employee validation failed", zap.Error(err))
		h.writeServiceError(c, err)
		return
	}
	defer cleanup()

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Employee created successfully", resp)
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http update employee", zap.String("employee_id", id))

	req, cleanup, err := h.bindEmployeeRequest(c)
	if err != nil {
		h.logger.Warn("http update employee validation failed", zap.Error(err))
		h.writeServiceError(c, err)
		return
	}
	defer cleanup()

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Employee updated successfully", resp)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http delete employee", zap.String("employee_id", id))

	deleted, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	msg := "Employee deleted successfully"
	if !deleted {
		msg = "Employee already absent"
	}
	response.Success(c, http.StatusOK, msg, DeleteEmployeeResponse{Deleted: deleted})
}

// bindEmployeeRequest accepts JSON or multipart bodies. For multipart, the
// optional profileImage file is opened and closed by the returned cleanup.
func (h *Handler) bindEmployeeRequest(c *gin.Context) (EmployeeRequest, func(), error) {
	noop := func() {}

	var req EmployeeRequest
	if err := c.ShouldBind(&req); err != nil {
		return req, noop, apperror.MapValidationError(err)
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return req, noop, nil
	}

	fh, err := c.FormFile(profileImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return req, noop, nil
	}
	if err != nil {
		return req, noop, apperror.InvalidField("Profile Image")
	}

	f, err := fh.Open()
	if err != nil {
		return req, noop, apperror.InvalidField("Profile Image")
	}

	req.ProfileImage = f
	return req, func() { closeQuietly(f) }, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
