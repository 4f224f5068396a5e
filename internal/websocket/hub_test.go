package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, identity Identity) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, identity)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubBroadcastsToEveryone(t *testing.T) {
	hub, conn := startHub(t, Identity{})

	hub.Publish(&Message{Type: MessageTypeDatabaseChanged, Version: 7, Source: "local"})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeDatabaseChanged, msg.Type)
	assert.Equal(t, int64(7), msg.Version)
	assert.NotZero(t, msg.Timestamp)
}

func TestHubHonoursRecipients(t *testing.T) {
	hub, conn := startHub(t, Identity{UserID: "cust-1"})

	hub.Publish(&Message{Type: MessageTypeBookingStatus, BookingID: "b-other", Recipients: []string{"cust-2"}})
	hub.Publish(&Message{Type: MessageTypeBookingStatus, BookingID: "b-mine", Recipients: []string{"cust-1", "mech-1"}})

	msg := readMessage(t, conn)
	assert.Equal(t, "b-mine", msg.BookingID)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.ridersbud.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://app.ridersbud.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
}
