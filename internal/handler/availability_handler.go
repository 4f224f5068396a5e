package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// AvailabilityHandler serves mechanic matching and slot lookups.
type AvailabilityHandler struct {
	matching *service.MatchingService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(matching *service.MatchingService) *AvailabilityHandler {
	return &AvailabilityHandler{matching: matching}
}

// Find godoc
// @Summary Find available mechanics
// @Description Ranks mechanics for a service and date and returns those with at least one open slot
// @Tags Availability
// @Produce json
// @Param serviceId query string true "Service ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param specialization query string false "Exact specialization"
// @Param search query string false "Name or specialization search"
// @Param availableNow query bool false "Only mechanics working right now"
// @Param sortBy query string false "rating, reviews or name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Find(c *gin.Context) {
	var query service.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}

	result, err := h.matching.FindAvailable(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetStoreVersion(c, result.Version)

	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// MechanicSlots godoc
// @Summary List a mechanic's slots for a date
// @Tags Availability
// @Produce json
// @Param id path string true "Mechanic ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mechanics/{id}/slots [get]
func (h *AvailabilityHandler) MechanicSlots(c *gin.Context) {
	slots, err := h.matching.MechanicSlots(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
