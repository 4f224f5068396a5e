package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// AdminHandler exposes back-office configuration: roles, admin accounts, settings, content and tasks.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// ListRoles godoc
// @Summary List admin roles
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/roles [get]
func (h *AdminHandler) ListRoles(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListRoles(c.Request.Context()), nil)
}

// CreateRole godoc
// @Summary Create admin role
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateRoleRequest true "Role"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/roles [post]
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if !bindJSON(c, &req, "invalid role payload") {
		return
	}
	role, err := h.service.CreateRole(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role)
}

// DeleteRole godoc
// @Summary Delete admin role
// @Description Roles still assigned to an admin user cannot be deleted
// @Tags Admin
// @Param id path string true "Role ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /admin/roles/{id} [delete]
func (h *AdminHandler) DeleteRole(c *gin.Context) {
	if err := h.service.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAdminUsers godoc
// @Summary List admin users
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListAdminUsers(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListAdminUsers(c.Request.Context()), nil)
}

// CreateAdminUser godoc
// @Summary Create admin user
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateAdminUserRequest true "Admin user"
// @Success 201 {object} response.Envelope
// @Router /admin/users [post]
func (h *AdminHandler) CreateAdminUser(c *gin.Context) {
	var req service.CreateAdminUserRequest
	if !bindJSON(c, &req, "invalid admin user payload") {
		return
	}
	user, err := h.service.CreateAdminUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Settings godoc
// @Summary Get application settings
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *AdminHandler) Settings(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Settings(c.Request.Context()), nil)
}

// UpdateSettings godoc
// @Summary Update application settings
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.Settings true "Settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if !bindJSON(c, &settings, "invalid settings payload") {
		return
	}
	updated, err := h.service.UpdateSettings(c.Request.Context(), settings)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Banners godoc
// @Summary List banners
// @Description Public callers only see active banners
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/banners [get]
func (h *AdminHandler) Banners(c *gin.Context) {
	activeOnly := !isAdmin(currentUser(c))
	response.JSON(c, http.StatusOK, h.service.Banners(c.Request.Context(), activeOnly), nil)
}

// ReplaceBanners godoc
// @Summary Replace all banners
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body []models.Banner true "Banners"
// @Success 200 {object} response.Envelope
// @Router /admin/banners [put]
func (h *AdminHandler) ReplaceBanners(c *gin.Context) {
	var banners []models.Banner
	if !bindJSON(c, &banners, "invalid banners payload") {
		return
	}
	saved, err := h.service.ReplaceBanners(c.Request.Context(), banners)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// FAQs godoc
// @Summary List FAQs
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/faqs [get]
func (h *AdminHandler) FAQs(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.FAQs(c.Request.Context()), nil)
}

// ReplaceFAQs godoc
// @Summary Replace all FAQs
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body []models.FAQ true "FAQs"
// @Success 200 {object} response.Envelope
// @Router /admin/faqs [put]
func (h *AdminHandler) ReplaceFAQs(c *gin.Context) {
	var faqs []models.FAQ
	if !bindJSON(c, &faqs, "invalid faqs payload") {
		return
	}
	saved, err := h.service.ReplaceFAQs(c.Request.Context(), faqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// ListTasks godoc
// @Summary List admin tasks
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/tasks [get]
func (h *AdminHandler) ListTasks(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListTasks(c.Request.Context()), nil)
}

// CreateTask godoc
// @Summary Create admin task
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task"
// @Success 201 {object} response.Envelope
// @Router /admin/tasks [post]
func (h *AdminHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if !bindJSON(c, &req, "invalid task payload") {
		return
	}
	task, err := h.service.CreateTask(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// CompleteTask godoc
// @Summary Complete admin task
// @Tags Admin
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /admin/tasks/{id}/complete [post]
func (h *AdminHandler) CompleteTask(c *gin.Context) {
	task, err := h.service.CompleteTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}
