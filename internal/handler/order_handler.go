package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// OrderHandler exposes parts orders.
type OrderHandler struct {
	service *service.OrderService
}

// NewOrderHandler constructs the handler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{service: svc}
}

// Create godoc
// @Summary Place a parts order
// @Description Stock is checked and decremented atomically
// @Tags Orders
// @Accept json
// @Produce json
// @Param payload body service.CreateOrderRequest true "Order"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(c, &req, "invalid order payload") {
		return
	}
	if user := currentUser(c); user != nil && user.Role == models.RoleCustomer {
		req.CustomerID = user.ID
	}
	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// List godoc
// @Summary List orders
// @Description Customers only see their own orders
// @Tags Orders
// @Produce json
// @Param customerId query string false "Customer ID (admin)"
// @Success 200 {object} response.Envelope
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	customerID := c.Query("customerId")
	if !isAdmin(user) {
		customerID = user.ID
	}
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), customerID), nil)
}

// Get godoc
// @Summary Get order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := currentUser(c); !isAdmin(user) && (user == nil || order.CustomerID != user.ID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// SetStatus godoc
// @Summary Update order status
// @Description Cancelling restocks the parts; Delivered and Cancelled orders are final
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param payload body service.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req service.UpdateOrderStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	order, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}
