package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// CatalogHandler exposes services and store parts.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

func catalogFilter(c *gin.Context) service.CatalogFilter {
	return service.CatalogFilter{Category: c.Query("category"), Search: c.Query("search")}
}

// ListServices godoc
// @Summary List bookable services
// @Tags Catalog
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListServices(c.Request.Context(), catalogFilter(c)), nil)
}

// GetService godoc
// @Summary Get service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /services/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	svc, err := h.service.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc, nil)
}

// CreateService godoc
// @Summary Create service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.ServiceRequest true "Service"
// @Success 201 {object} response.Envelope
// @Router /services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req service.ServiceRequest
	if !bindJSON(c, &req, "invalid service payload") {
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, svc)
}

// UpdateService godoc
// @Summary Update service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param payload body service.ServiceRequest true "Service"
// @Success 200 {object} response.Envelope
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req service.ServiceRequest
	if !bindJSON(c, &req, "invalid service payload") {
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc, nil)
}

// ListParts godoc
// @Summary List store parts
// @Tags Catalog
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /parts [get]
func (h *CatalogHandler) ListParts(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListParts(c.Request.Context(), catalogFilter(c)), nil)
}

// GetPart godoc
// @Summary Get part
// @Tags Catalog
// @Produce json
// @Param id path string true "Part ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parts/{id} [get]
func (h *CatalogHandler) GetPart(c *gin.Context) {
	part, err := h.service.GetPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, part, nil)
}

// CreatePart godoc
// @Summary Create part
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.PartRequest true "Part"
// @Success 201 {object} response.Envelope
// @Router /parts [post]
func (h *CatalogHandler) CreatePart(c *gin.Context) {
	var req service.PartRequest
	if !bindJSON(c, &req, "invalid part payload") {
		return
	}
	part, err := h.service.CreatePart(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, part)
}

// UpdatePart godoc
// @Summary Update part
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Part ID"
// @Param payload body service.PartRequest true "Part"
// @Success 200 {object} response.Envelope
// @Router /parts/{id} [put]
func (h *CatalogHandler) UpdatePart(c *gin.Context) {
	var req service.PartRequest
	if !bindJSON(c, &req, "invalid part payload") {
		return
	}
	part, err := h.service.UpdatePart(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, part, nil)
}
