package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/websocket"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// RealtimeHandler upgrades clients to the change feed.
type RealtimeHandler struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

// NewRealtimeHandler constructs the handler.
func NewRealtimeHandler(hub *websocket.Hub, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHandler{hub: hub, logger: logger}
}

// Serve godoc
// @Summary Realtime change feed
// @Description Websocket delivering database_changed and booking_status messages. Pass ?token= to receive personal booking updates.
// @Tags Realtime
// @Param token query string false "Access token"
// @Success 101
// @Router /ws [get]
func (h *RealtimeHandler) Serve(c *gin.Context) {
	identity := websocket.Identity{}
	if user := currentUser(c); user != nil {
		identity.UserID = user.ID
		identity.Admin = user.Role == models.RoleAdmin
	}

	if err := h.hub.Serve(c.Writer, c.Request, identity); err != nil {
		if errors.Is(err, websocket.ErrHubClosed) {
			return
		}
		// The upgrader has already replied when the handshake itself failed.
		if !c.Writer.Written() {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "websocket upgrade failed"))
		}
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
	}
}
