package handler

import (
	"context"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/infrastructure/auth"
	"github.com/crmconsole/backend/internal/interfaces/http/dto"
	"github.com/crmconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettingsUseCase reads and stores CRM credentials
type SettingsUseCase interface {
	Get(ctx context.Context, tenantID uuid.UUID, reveal bool) (*appintegration.SettingsResponse, error)
	Save(ctx context.Context, tenantID uuid.UUID, req appintegration.SettingsRequest) error
}

// MappingUseCase lists and saves field mappings
type MappingUseCase interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]appintegration.MappingResponse, error)
	Create(ctx context.Context, tenantID uuid.UUID, req appintegration.MappingRequest) (*appintegration.MappingResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appintegration.MappingRequest) (*appintegration.MappingResponse, error)
}

// CatalogUseCase composes field catalogs
type CatalogUseCase interface {
	Get(ctx context.Context, tenantID uuid.UUID, sobjectName, modelName string) (*appintegration.CatalogResponse, error)
}

// RoleUseCase lists the role catalog
type RoleUseCase interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]appintegration.RoleResponse, error)
}

// IntegrationHandler serves the CRM integration endpoints
type IntegrationHandler struct {
	BaseHandler
	settings SettingsUseCase
	mappings MappingUseCase
	catalog  CatalogUseCase
	roles    RoleUseCase
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(settings SettingsUseCase, mappings MappingUseCase, catalog CatalogUseCase, roles RoleUseCase) *IntegrationHandler {
	return &IntegrationHandler{
		settings: settings,
		mappings: mappings,
		catalog:  catalog,
		roles:    roles,
	}
}

// CatalogQuery selects the two sides of a catalog
type CatalogQuery struct {
	SObject string `form:"sobject" binding:"required"`
	Model   string `form:"model" binding:"required"`
}

// GetSettings godoc
//
//	@Summary	Get the stored CRM credentials
//	@Tags		integration
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=appintegration.SettingsResponse}
//	@Router		/integration/settings [get]
func (h *IntegrationHandler) GetSettings(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	// Secrets are returned only to callers allowed to pre-populate the form.
	reveal := middleware.HasPermission(c, auth.PermSettingsRead)
	resp, err := h.settings.Get(c.Request.Context(), tenantID, reveal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveSettings godoc
//
//	@Summary	Store CRM credentials
//	@Tags		integration
//	@Accept		json
//	@Produce	json
//	@Param		request	body		appintegration.SettingsRequest	true	"Credentials"
//	@Success	200		{object}	dto.Response
//	@Failure	400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/integration/settings [put]
func (h *IntegrationHandler) SaveSettings(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req appintegration.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.settings.Save(c.Request.Context(), tenantID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"configured": true})
}

// GetCatalog godoc
//
//	@Summary	Get the mappable fields of a CRM object and an internal model
//	@Tags		integration
//	@Produce	json
//	@Param		sobject	query		string	true	"CRM object name"
//	@Param		model	query		string	true	"Internal model name"
//	@Success	200		{object}	dto.Response{data=appintegration.CatalogResponse}
//	@Failure	502		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/integration/catalog [get]
func (h *IntegrationHandler) GetCatalog(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var q CatalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.catalog.Get(c.Request.Context(), tenantID, q.SObject, q.Model)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMappings godoc
//
//	@Summary	List saved field mappings
//	@Tags		integration
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=[]appintegration.MappingResponse}
//	@Router		/integration/mappings [get]
func (h *IntegrationHandler) ListMappings(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	list, err := h.mappings.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// CreateMapping godoc
//
//	@Summary	Save the first mapping of a record type
//	@Tags		integration
//	@Accept		json
//	@Produce	json
//	@Param		request	body		appintegration.MappingRequest	true	"Mapping"
//	@Success	201		{object}	dto.Response{data=appintegration.MappingResponse}
//	@Failure	409		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/integration/mappings [post]
func (h *IntegrationHandler) CreateMapping(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req appintegration.MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.mappings.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateMapping godoc
//
//	@Summary	Replace a saved mapping
//	@Tags		integration
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Mapping ID"
//	@Param		request	body		appintegration.MappingRequest	true	"Mapping"
//	@Success	200		{object}	dto.Response{data=appintegration.MappingResponse}
//	@Failure	404		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/integration/mappings/{id} [put]
func (h *IntegrationHandler) UpdateMapping(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid mapping ID")
		return
	}
	var req appintegration.MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.mappings.Update(c.Request.Context(), tenantID, uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListRoles godoc
//
//	@Summary	List the internal role catalog
//	@Tags		integration
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=[]appintegration.RoleResponse}
//	@Router		/integration/roles [get]
func (h *IntegrationHandler) ListRoles(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	roles, err := h.roles.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, roles)
}
