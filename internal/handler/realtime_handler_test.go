package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/websocket"
)

func TestRealtimeHandlerDeliversPersonalMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub(nil, nil, nil)
	go hub.Run(ctx)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ws", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, customerClaims)
		c.Next()
	}, NewRealtimeHandler(hub, nil).Serve)
	server := httptest.NewServer(engine)
	defer server.Close()

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(&websocket.Message{Type: websocket.MessageTypeBookingStatus, BookingID: "bk-9", Status: "Completed", Recipients: []string{"cust-2"}})
	hub.Publish(&websocket.Message{Type: websocket.MessageTypeBookingStatus, BookingID: "bk-1", Status: "En Route", Recipients: []string{"cust-1"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "bk-1", msg.BookingID)
	assert.Equal(t, "En Route", msg.Status)
}

func TestRealtimeHandlerRejectsPlainHTTP(t *testing.T) {
	hub := websocket.NewHub(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c, rec := newTestContext("GET", "/ws", nil, nil)
	NewRealtimeHandler(hub, nil).Serve(c)
	assert.Equal(t, 400, rec.Code)
}
