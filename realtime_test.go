package rushx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// newWSClient wires a client against an httptest server speaking WebSocket.
func newWSClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	opts = append([]Option{
		WithWSBaseURL(wsURL),
		WithTokenSource(func() string { return "ws-token" }),
	}, opts...)
	return NewClient(opts...)
}

func awaitFrames[T any](t *testing.T, ch <-chan T, n int) []T {
	t.Helper()
	out := make([]T, 0, n)
	for len(out) < n {
		select {
		case frame := <-ch:
			out = append(out, frame)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for frame %d of %d", len(out)+1, n)
		}
	}
	return out
}

func TestRealtime_NotificationsDeliveredInArrivalOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/notifications/", r.URL.Path)
		require.Equal(t, "ws-token", r.URL.Query().Get("token"))

		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for i := 1; i <= 3; i++ {
			require.NoError(t, conn.WriteJSON(map[string]interface{}{
				"id": i, "type": "order_update",
			}))
		}
		// Hold the connection until the client hangs up
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler)

	frames := make(chan Notification, 8)
	ch, err := client.Realtime.Notifications(context.Background(), func(n Notification) {
		frames <- n
	})
	require.NoError(t, err)
	defer ch.Close()

	got := awaitFrames(t, frames, 3)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
	assert.Equal(t, ChannelOpen, ch.State())
}

func TestRealtime_OrderTrackingUsesOrderScopedPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/orders/42/tracking/", r.URL.Path)

		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"id": 9, "order_id": 42, "status": "IN_TRANSIT",
		}))
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler)

	frames := make(chan TrackingEvent, 1)
	ch, err := client.Realtime.OrderTracking(context.Background(), 42, func(ev TrackingEvent) {
		frames <- ev
	})
	require.NoError(t, err)
	defer ch.Close()

	got := awaitFrames(t, frames, 1)
	assert.Equal(t, OrderInTransit, got[0].Status)
	assert.Equal(t, ChannelOrderTracking, ch.Kind())
	assert.Equal(t, int64(42), ch.OrderID())
}

func TestRealtime_MalformedFramesAreDroppedNotFatal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id": "not-a-number"}`)))
		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"id": 5, "order_id": 42, "status": "DELIVERED",
		}))
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler)

	frames := make(chan TrackingEvent, 2)
	ch, err := client.Realtime.OrderTracking(context.Background(), 42, func(ev TrackingEvent) {
		frames <- ev
	})
	require.NoError(t, err)
	defer ch.Close()

	got := awaitFrames(t, frames, 1)
	assert.Equal(t, int64(5), got[0].ID)
}

func TestRealtime_ChatSendUsesWireShape(t *testing.T) {
	received := make(chan map[string]string, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/orders/7/chat/", r.URL.Path)

		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var body map[string]string
		require.NoError(t, conn.ReadJSON(&body))
		received <- body

		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"id": 1, "order_id": 7, "sender_id": 3, "recipient_id": 4,
			"message": body["message"],
		}))
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler)

	frames := make(chan ChatMessage, 1)
	ch, err := client.Realtime.OrderChat(context.Background(), 7, func(m ChatMessage) {
		frames <- m
	})
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.SendChat("on my way"))

	sent := awaitFrames(t, received, 1)
	assert.Equal(t, map[string]string{"message": "on my way"}, sent[0])

	// The live frame shape maps id suffixed references onto the same struct
	// the REST history uses
	echoed := awaitFrames(t, frames, 1)
	assert.Equal(t, int64(7), echoed[0].Order)
	assert.Equal(t, int64(3), echoed[0].Sender)
	assert.Equal(t, "on my way", echoed[0].Message)
}

func TestRealtime_MissingTokenFailsBeforeDial(t *testing.T) {
	client := NewClient(
		WithWSBaseURL("ws://127.0.0.1:1"),
		WithTokenSource(func() string { return "" }),
	)

	_, err := client.Realtime.Notifications(context.Background(), func(Notification) {})
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, 0, client.Realtime.OpenCount())
}

func TestRealtime_CloseIsIdempotentAndUnregisters(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler)

	ch, err := client.Realtime.Notifications(context.Background(), func(Notification) {})
	require.NoError(t, err)
	assert.Equal(t, 1, client.Realtime.OpenCount())

	ch.Close()
	ch.Close()
	ch.Close()

	assert.Equal(t, ChannelClosed, ch.State())
	assert.Equal(t, 0, client.Realtime.OpenCount())
	assert.ErrorIs(t, ch.SendChat("too late"), ErrChannelClosed)
}

func TestChannel_SendDistinguishesReconnectFromClosed(t *testing.T) {
	ch := &Channel{done: make(chan struct{})}

	ch.state.Store(int32(ChannelConnecting))
	assert.ErrorIs(t, ch.Send(map[string]string{"message": "m"}), ErrChannelReconnecting)

	ch.state.Store(int32(ChannelFailed))
	assert.ErrorIs(t, ch.Send(map[string]string{"message": "m"}), ErrChannelClosed)

	ch.state.Store(int32(ChannelClosed))
	assert.ErrorIs(t, ch.SendChat("m"), ErrChannelClosed)
}

func TestRealtime_OpenCountForTracksPerOrderChannels(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler)
	ctx := context.Background()

	tracking, err := client.Realtime.OrderTracking(ctx, 42, func(TrackingEvent) {})
	require.NoError(t, err)
	chat, err := client.Realtime.OrderChat(ctx, 42, func(ChatMessage) {})
	require.NoError(t, err)
	notifications, err := client.Realtime.Notifications(ctx, func(Notification) {})
	require.NoError(t, err)
	defer notifications.Close()

	assert.Equal(t, 3, client.Realtime.OpenCount())
	assert.Equal(t, 2, client.Realtime.OpenCountFor(42))
	assert.Equal(t, 0, client.Realtime.OpenCountFor(99))

	tracking.Close()
	chat.Close()
	assert.Equal(t, 0, client.Realtime.OpenCountFor(42))
	assert.Equal(t, 1, client.Realtime.OpenCount())
}

func TestRealtime_AbnormalDropFailsChannelByDefault(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Drop without a close handshake
		_ = conn.Close()
	})

	client := newWSClient(t, handler)

	ch, err := client.Realtime.Notifications(context.Background(), func(Notification) {})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return ch.State() == ChannelFailed
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, client.Realtime.OpenCount())
}

func TestRealtime_ReconnectResumesAfterDrop(t *testing.T) {
	var connects atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connects.Add(1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		if n == 1 {
			require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": 1}))
			_ = conn.Close()
			return
		}
		defer conn.Close()
		require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": 2}))
		_, _, _ = conn.ReadMessage()
	})

	client := newWSClient(t, handler, WithReconnect(3))

	frames := make(chan Notification, 4)
	ch, err := client.Realtime.Notifications(context.Background(), func(n Notification) {
		frames <- n
	})
	require.NoError(t, err)
	defer ch.Close()

	got := awaitFrames(t, frames, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.GreaterOrEqual(t, connects.Load(), int64(2))
	assert.Equal(t, ChannelOpen, ch.State())
}
