// Package handler holds the gin handlers of the integration API.
package handler

import (
	"errors"
	"net/http"

	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/crmconsole/backend/internal/infrastructure/logger"
	"github.com/crmconsole/backend/internal/interfaces/http/dto"
	"github.com/crmconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errNoTenant is returned when the request carries no tenant.
var errNoTenant = errors.New("tenant ID not found in context")

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the tenant ID placed by the JWT middleware
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTTenantID(c)
	if raw == "" {
		return uuid.Nil, errNoTenant
	}
	return uuid.Parse(raw)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the status derived from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// BindError answers a failed ShouldBind call with per-field messages when
// the failure is a validation error.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if fields := middleware.ValidationFields(err); fields != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", fields))
		return
	}
	h.Error(c, dto.ErrCodeInvalidJSON, "Malformed request body")
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}
	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// tenantOrAbort resolves the tenant or answers 401 and returns false.
func (h *BaseHandler) tenantOrAbort(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return uuid.Nil, false
	}
	return tenantID, true
}
