package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// ExportHandler renders booking reports for admins.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

type exportRequest struct {
	Format     service.ExportFormat `json:"format"`
	CustomerID string               `json:"customerId"`
	MechanicID string               `json:"mechanicId"`
	Status     models.BookingStatus `json:"status"`
	Date       string               `json:"date"`
}

// Export godoc
// @Summary Export bookings
// @Description Renders bookings as CSV or PDF and returns a signed download URL
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body exportRequest true "Export options"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exports/bookings [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	if req.Format == "" {
		req.Format = service.ExportFormatCSV
	}
	filter := models.BookingFilter{CustomerID: req.CustomerID, MechanicID: req.MechanicID, Status: req.Status, Date: req.Date}

	result, err := h.service.ExportBookings(c.Request.Context(), req.Format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download streams a generated export for a valid signed token.
func (h *ExportHandler) Download(c *gin.Context) {
	file, contentType, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read export"))
		return
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name()))
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}
