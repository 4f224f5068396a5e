package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

func currentUser(c *gin.Context) *models.UserInfo {
	return middleware.CurrentUser(c)
}

// bindJSON decodes the body and writes a validation error on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func isAdmin(user *models.UserInfo) bool {
	return user != nil && user.Role == models.RoleAdmin
}
