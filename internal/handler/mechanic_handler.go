package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// MechanicHandler exposes mechanic registration and profile management.
type MechanicHandler struct {
	service *service.MechanicService
}

// NewMechanicHandler constructs the handler.
func NewMechanicHandler(svc *service.MechanicService) *MechanicHandler {
	return &MechanicHandler{service: svc}
}

// Register godoc
// @Summary Register as a mechanic
// @Description New mechanics start Pending until an admin approves them
// @Tags Mechanics
// @Accept json
// @Produce json
// @Param payload body service.RegisterMechanicRequest true "Mechanic payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mechanics/register [post]
func (h *MechanicHandler) Register(c *gin.Context) {
	var req service.RegisterMechanicRequest
	if !bindJSON(c, &req, "invalid mechanic payload") {
		return
	}
	mechanic, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mechanic)
}

// List godoc
// @Summary List mechanics
// @Tags Mechanics
// @Produce json
// @Param status query string false "Active, Inactive or Pending"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /mechanics [get]
func (h *MechanicHandler) List(c *gin.Context) {
	filter := models.MechanicFilter{Search: c.Query("search")}
	if raw := c.Query("status"); raw != "" {
		status := models.MechanicStatus(raw)
		filter.Status = &status
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get mechanic
// @Tags Mechanics
// @Produce json
// @Param id path string true "Mechanic ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mechanics/{id} [get]
func (h *MechanicHandler) Get(c *gin.Context) {
	mechanic, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mechanic, nil)
}

// SetStatus godoc
// @Summary Approve or deactivate a mechanic
// @Tags Mechanics
// @Accept json
// @Produce json
// @Param id path string true "Mechanic ID"
// @Param payload body service.UpdateMechanicStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /mechanics/{id}/status [patch]
func (h *MechanicHandler) SetStatus(c *gin.Context) {
	var req service.UpdateMechanicStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	mechanic, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mechanic, nil)
}

// UpdateAvailability godoc
// @Summary Replace weekly availability
// @Tags Mechanics
// @Accept json
// @Produce json
// @Param id path string true "Mechanic ID"
// @Param payload body models.WeeklyAvailability true "Weekly schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /mechanics/{id}/availability [put]
func (h *MechanicHandler) UpdateAvailability(c *gin.Context) {
	var week models.WeeklyAvailability
	if !bindJSON(c, &week, "invalid availability payload") {
		return
	}
	mechanic, err := h.service.UpdateAvailability(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mechanic, nil)
}

// AddTimeOff godoc
// @Summary Add an unavailable date range
// @Tags Mechanics
// @Accept json
// @Produce json
// @Param id path string true "Mechanic ID"
// @Param payload body models.DateRange true "Inclusive range"
// @Success 201 {object} response.Envelope
// @Router /mechanics/{id}/time-off [post]
func (h *MechanicHandler) AddTimeOff(c *gin.Context) {
	var r models.DateRange
	if !bindJSON(c, &r, "invalid time off payload") {
		return
	}
	mechanic, err := h.service.AddTimeOff(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mechanic)
}

// RemoveTimeOff godoc
// @Summary Remove an unavailable date range
// @Tags Mechanics
// @Produce json
// @Param id path string true "Mechanic ID"
// @Param startDate path string true "Range start (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mechanics/{id}/time-off/{startDate} [delete]
func (h *MechanicHandler) RemoveTimeOff(c *gin.Context) {
	mechanic, err := h.service.RemoveTimeOff(c.Request.Context(), c.Param("id"), c.Param("startDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mechanic, nil)
}

// UpdateSpecializations godoc
// @Summary Replace specializations
// @Tags Mechanics
// @Accept json
// @Produce json
// @Param id path string true "Mechanic ID"
// @Param payload body service.UpdateSpecializationsRequest true "Tags"
// @Success 200 {object} response.Envelope
// @Router /mechanics/{id}/specializations [put]
func (h *MechanicHandler) UpdateSpecializations(c *gin.Context) {
	var req service.UpdateSpecializationsRequest
	if !bindJSON(c, &req, "invalid specializations payload") {
		return
	}
	mechanic, err := h.service.UpdateSpecializations(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mechanic, nil)
}
