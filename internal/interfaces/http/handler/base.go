package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// Page sends one page of a list with its pagination meta
func (h *BaseHandler) Page(c *gin.Context, data any, total int64, filter shared.Filter) {
	c.JSON(http.StatusOK, dto.NewPageResponse(data, total, filter.Page, filter.PageSize, middleware.GetRequestID(c)))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, middleware.GetRequestID(c)))
}

// HandleError converts an error into a response. Domain errors keep their
// code and take the status of their kind; anything else is logged and
// reported as an internal error without details.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Kind != shared.KindInternal {
		c.JSON(dto.StatusForKind(domainErr.Kind), dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.L(c.Request.Context()).Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// bindJSON binds the body into obj and answers 400 when it does not
// validate. It reports whether the handler may continue.
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// caller returns the authenticated operator, answering 401 when the route
// was mounted without Authenticate
func (h *BaseHandler) caller(c *gin.Context) (middleware.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		h.Unauthorized(c, "No authenticated operator on the request")
		return middleware.Caller{}, false
	}
	return caller, true
}

// uuidParam parses the named path parameter
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// branchQuery reads ?branch_id, falling back to the caller's branch
func (h *BaseHandler) branchQuery(c *gin.Context) (uuid.UUID, bool) {
	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id format")
			return uuid.Nil, false
		}
		return id, true
	}
	caller, ok := h.caller(c)
	if !ok {
		return uuid.Nil, false
	}
	return caller.BranchID, true
}

// parseUUIDs parses a list of already validated UUID strings
func parseUUIDs(values []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		out = append(out, uuid.MustParse(v))
	}
	return out
}

// parseDate parses an accounting date, answering 400 on failure
func (h *BaseHandler) parseDate(c *gin.Context, value string) (time.Time, bool) {
	date, err := shared.ParseDate(value)
	if err != nil {
		h.HandleError(c, err)
		return time.Time{}, false
	}
	return date, true
}

// filterFrom applies defaults to a page request
func filterFrom(p dto.PageRequest) shared.Filter {
	f := shared.DefaultFilter()
	if p.Page > 0 {
		f.Page = p.Page
	}
	if p.PageSize > 0 {
		f.PageSize = p.PageSize
	}
	f.OrderBy = p.OrderBy
	f.OrderDir = p.OrderDir
	return f
}
