package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// BookingHandler exposes booking creation and lifecycle endpoints.
type BookingHandler struct {
	service *service.BookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Create godoc
// @Summary Book a service
// @Description Reserves the mechanic's slot atomically; a taken slot returns SLOT_UNAVAILABLE
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if !bindJSON(c, &req, "invalid booking payload") {
		return
	}
	if user := currentUser(c); user != nil && user.Role == models.RoleCustomer {
		req.CustomerID = user.ID
	}

	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// List godoc
// @Summary List bookings
// @Description Customers and mechanics only see their own bookings
// @Tags Bookings
// @Produce json
// @Param customerId query string false "Customer ID"
// @Param mechanicId query string false "Mechanic ID"
// @Param status query string false "Booking status"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		CustomerID: c.Query("customerId"),
		MechanicID: c.Query("mechanicId"),
		Status:     models.BookingStatus(c.Query("status")),
		Date:       c.Query("date"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}
	restrictToCaller(&filter, currentUser(c))

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canView(booking, currentUser(c)) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// SetStatus godoc
// @Summary Change booking status
// @Description Cancelling requires a reason; Completed and Cancelled bookings are final
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.UpdateBookingStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) SetStatus(c *gin.Context) {
	var req service.UpdateBookingStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	booking, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// AssignMechanic godoc
// @Summary Assign a mechanic
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.AssignMechanicRequest true "Mechanic"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/mechanic [patch]
func (h *BookingHandler) AssignMechanic(c *gin.Context) {
	var req service.AssignMechanicRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	booking, err := h.service.AssignMechanic(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

func restrictToCaller(filter *models.BookingFilter, user *models.UserInfo) {
	if user == nil {
		return
	}
	switch user.Role {
	case models.RoleCustomer:
		filter.CustomerID = user.ID
	case models.RoleMechanic:
		filter.MechanicID = user.ID
	}
}

func canView(booking *models.Booking, user *models.UserInfo) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return booking.CustomerID == user.ID
	case models.RoleMechanic:
		return booking.MechanicID == user.ID
	}
	return false
}
