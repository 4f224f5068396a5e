package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context) (*service.DashboardSummary, bool)
}

// DashboardHandler serves the admin landing summary.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Admin godoc
// @Summary Admin dashboard
// @Description Booking, mechanic, order and stock counters for today
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, hit := h.service.Admin(c.Request.Context())
	middleware.SetCacheHit(c, hit)
	middleware.SetStoreVersion(c, summary.Version)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
