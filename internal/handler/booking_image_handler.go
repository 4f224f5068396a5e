package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// BookingImageHandler handles before/after photo uploads and signed downloads.
type BookingImageHandler struct {
	service *service.BookingImageService
}

// NewBookingImageHandler constructs the handler.
func NewBookingImageHandler(svc *service.BookingImageService) *BookingImageHandler {
	return &BookingImageHandler{service: svc}
}

// Upload godoc
// @Summary Upload a booking photo
// @Tags Bookings
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID"
// @Param kind formData string true "before or after"
// @Param file formData file true "Image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /bookings/{id}/images [post]
func (h *BookingImageHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	kind := service.ImageKind(c.PostForm("kind"))
	image, err := h.service.Upload(c.Request.Context(), c.Param("id"), kind, header.Filename, file, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, image)
}

// List godoc
// @Summary List booking photos with signed URLs
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/images [get]
func (h *BookingImageHandler) List(c *gin.Context) {
	images, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, images, nil)
}

// Serve streams a photo for a valid signed token.
func (h *BookingImageHandler) Serve(c *gin.Context) {
	file, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read image"))
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}
