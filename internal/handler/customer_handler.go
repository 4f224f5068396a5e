package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// CustomerHandler exposes customer accounts and their vehicles.
type CustomerHandler struct {
	service *service.CustomerService
}

// NewCustomerHandler constructs the handler.
func NewCustomerHandler(svc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: svc}
}

// Register godoc
// @Summary Register a customer account
// @Tags Customers
// @Accept json
// @Produce json
// @Param payload body service.RegisterCustomerRequest true "Customer"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /customers/register [post]
func (h *CustomerHandler) Register(c *gin.Context) {
	var req service.RegisterCustomerRequest
	if !bindJSON(c, &req, "invalid customer payload") {
		return
	}
	customer, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, customer)
}

// Get godoc
// @Summary Get customer profile
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, customer, nil)
}

// AddVehicle godoc
// @Summary Add a vehicle
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param payload body models.Vehicle true "Vehicle"
// @Success 201 {object} response.Envelope
// @Router /customers/{id}/vehicles [post]
func (h *CustomerHandler) AddVehicle(c *gin.Context) {
	var vehicle models.Vehicle
	if !bindJSON(c, &vehicle, "invalid vehicle payload") {
		return
	}
	created, err := h.service.AddVehicle(c.Request.Context(), c.Param("id"), vehicle)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// RemoveVehicle godoc
// @Summary Remove a vehicle
// @Tags Customers
// @Param id path string true "Customer ID"
// @Param vehicleId path string true "Vehicle ID"
// @Success 204
// @Router /customers/{id}/vehicles/{vehicleId} [delete]
func (h *CustomerHandler) RemoveVehicle(c *gin.Context) {
	if err := h.service.RemoveVehicle(c.Request.Context(), c.Param("id"), c.Param("vehicleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
