package rushx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChannelKind identifies the concern a realtime channel is scoped to.
type ChannelKind string

const (
	ChannelNotifications ChannelKind = "notifications"
	ChannelOrderTracking ChannelKind = "order-tracking"
	ChannelOrderChat     ChannelKind = "order-chat"
)

// ChannelState is the observable connection state of a channel.
type ChannelState int32

const (
	// ChannelConnecting means the handshake (or a reconnect attempt) is in
	// progress.
	ChannelConnecting ChannelState = iota
	// ChannelOpen means frames are flowing.
	ChannelOpen
	// ChannelClosed means the owner closed the channel.
	ChannelClosed
	// ChannelFailed means the connection dropped and will not recover.
	ChannelFailed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosed:
		return "closed"
	case ChannelFailed:
		return "failed"
	}
	return "unknown"
}

// RawHandler receives each inbound frame as raw JSON, in arrival order.
type RawHandler func(json.RawMessage)

// Realtime manages the lifecycle of WebSocket channels keyed by concern and,
// where applicable, order id. Opening a channel is the only way frames
// arrive; closing a channel is idempotent and must happen exactly once when
// the owning context goes away, or sockets leak.
type Realtime struct {
	baseURL     string
	tokenSource TokenSource
	dialer      *websocket.Dialer
	logger      *zap.Logger
	maxRetries  int
	backoffBase time.Duration

	mu   sync.Mutex
	open map[*Channel]struct{}
}

func newRealtime(baseURL string, tokenSource TokenSource, logger *zap.Logger, maxRetries int) *Realtime {
	return &Realtime{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		tokenSource: tokenSource,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger:      logger,
		maxRetries:  maxRetries,
		backoffBase: 500 * time.Millisecond,
		open:        make(map[*Channel]struct{}),
	}
}

// Notifications opens the user-scoped notifications channel.
func (r *Realtime) Notifications(ctx context.Context, fn func(Notification)) (*Channel, error) {
	return r.openChannel(ctx, ChannelNotifications, 0, func(data json.RawMessage) {
		var notification Notification
		if err := json.Unmarshal(data, &notification); err != nil {
			r.logger.Warn("dropping malformed notification frame", zap.Error(err))
			return
		}
		fn(notification)
	})
}

// OrderTracking opens the tracking channel for one order.
func (r *Realtime) OrderTracking(ctx context.Context, orderID int64, fn func(TrackingEvent)) (*Channel, error) {
	return r.openChannel(ctx, ChannelOrderTracking, orderID, func(data json.RawMessage) {
		var event TrackingEvent
		if err := json.Unmarshal(data, &event); err != nil {
			r.logger.Warn("dropping malformed tracking frame",
				zap.Int64("order_id", orderID), zap.Error(err))
			return
		}
		fn(event)
	})
}

// OrderChat opens the chat channel for one order. Outbound messages go
// through Channel.SendChat.
func (r *Realtime) OrderChat(ctx context.Context, orderID int64, fn func(ChatMessage)) (*Channel, error) {
	return r.openChannel(ctx, ChannelOrderChat, orderID, func(data json.RawMessage) {
		var message ChatMessage
		if err := json.Unmarshal(data, &message); err != nil {
			r.logger.Warn("dropping malformed chat frame",
				zap.Int64("order_id", orderID), zap.Error(err))
			return
		}
		fn(message)
	})
}

// OpenCount returns the number of currently open channels.
func (r *Realtime) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// OpenCountFor returns the number of open channels scoped to one order.
func (r *Realtime) OpenCountFor(orderID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for ch := range r.open {
		if ch.orderID == orderID && ch.kind != ChannelNotifications {
			count++
		}
	}
	return count
}

func (r *Realtime) channelURL(kind ChannelKind, orderID int64) (string, error) {
	// Browsers cannot set custom handshake headers, so the backend
	// authenticates WebSocket connects by token query parameter. The SDK
	// keeps the same contract.
	token := r.tokenSource()
	if token == "" {
		return "", ErrMissingToken
	}
	var path string
	switch kind {
	case ChannelNotifications:
		path = "/ws/notifications/"
	case ChannelOrderTracking:
		path = fmt.Sprintf("/ws/orders/%d/tracking/", orderID)
	case ChannelOrderChat:
		path = fmt.Sprintf("/ws/orders/%d/chat/", orderID)
	default:
		return "", fmt.Errorf("rushx: unknown channel kind %q", kind)
	}
	return r.baseURL + path + "?token=" + url.QueryEscape(token), nil
}

func (r *Realtime) openChannel(ctx context.Context, kind ChannelKind, orderID int64, handler RawHandler) (*Channel, error) {
	channelURL, err := r.channelURL(kind, orderID)
	if err != nil {
		return nil, err
	}

	ch := &Channel{
		rt:      r,
		kind:    kind,
		orderID: orderID,
		handler: handler,
		done:    make(chan struct{}),
	}
	ch.state.Store(int32(ChannelConnecting))

	conn, _, err := r.dialer.DialContext(ctx, channelURL, nil)
	if err != nil {
		ch.state.Store(int32(ChannelFailed))
		return nil, fmt.Errorf("rushx: dial %s channel: %w", kind, err)
	}
	ch.conn = conn
	ch.state.Store(int32(ChannelOpen))

	r.mu.Lock()
	r.open[ch] = struct{}{}
	r.mu.Unlock()

	r.logger.Debug("channel opened",
		zap.String("kind", string(kind)), zap.Int64("order_id", orderID))

	go ch.readLoop()
	return ch, nil
}

func (r *Realtime) unregister(ch *Channel) {
	r.mu.Lock()
	delete(r.open, ch)
	r.mu.Unlock()
}

// Channel is a capability over one socket connection, scoped to one concern
// and optionally one order. It owns exactly one underlying transport at a
// time and is closed exactly once by the owning context.
type Channel struct {
	rt      *Realtime
	kind    ChannelKind
	orderID int64
	handler RawHandler

	connMu    sync.Mutex
	conn      *websocket.Conn
	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}
}

// Kind returns the channel's concern.
func (c *Channel) Kind() ChannelKind { return c.kind }

// OrderID returns the order the channel is scoped to, zero for
// notifications.
func (c *Channel) OrderID() int64 { return c.orderID }

// State returns the observable connection state.
func (c *Channel) State() ChannelState {
	return ChannelState(c.state.Load())
}

// Send JSON-encodes v onto the channel. A channel mid-reconnect reports
// ErrChannelReconnecting so callers can retry; closed and failed channels
// report ErrChannelClosed.
func (c *Channel) Send(v interface{}) error {
	switch c.State() {
	case ChannelOpen:
	case ChannelConnecting:
		return ErrChannelReconnecting
	default:
		return ErrChannelClosed
	}
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn.WriteJSON(v)
}

// SendChat sends a chat message in the wire shape the backend consumer
// expects.
func (c *Channel) SendChat(message string) error {
	return c.Send(map[string]string{"message": message})
}

// Close terminates the underlying connection. Safe to call more than once;
// only the first call has effect.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.state.Store(int32(ChannelClosed))
		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = c.conn.Close()
		}
		c.connMu.Unlock()
		c.rt.unregister(c)
		c.rt.logger.Debug("channel closed",
			zap.String("kind", string(c.kind)), zap.Int64("order_id", c.orderID))
	})
}

func (c *Channel) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// readLoop pumps frames from the connection and dispatches them in arrival
// order. On an abnormal drop it either reconnects (when the manager was
// configured with retries) or parks the channel in the failed state.
func (c *Channel) readLoop() {
	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed() {
				return
			}
			if c.reconnect() {
				continue
			}
			c.state.Store(int32(ChannelFailed))
			c.rt.unregister(c)
			c.rt.logger.Warn("channel dropped",
				zap.String("kind", string(c.kind)),
				zap.Int64("order_id", c.orderID),
				zap.Error(err))
			return
		}
		c.handler(data)
	}
}

// reconnect redials with exponential backoff. Returns true when a new
// connection is live. Frames sent while the channel was down are not
// replayed.
func (c *Channel) reconnect() bool {
	if c.rt.maxRetries <= 0 {
		return false
	}
	c.state.Store(int32(ChannelConnecting))
	backoff := c.rt.backoffBase
	for attempt := 1; attempt <= c.rt.maxRetries; attempt++ {
		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}

		channelURL, err := c.rt.channelURL(c.kind, c.orderID)
		if err != nil {
			continue
		}
		conn, _, err := c.rt.dialer.Dial(channelURL, nil)
		if err != nil {
			c.rt.logger.Debug("reconnect attempt failed",
				zap.String("kind", string(c.kind)),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		c.connMu.Lock()
		c.conn = conn
		c.connMu.Unlock()
		if c.closed() {
			_ = conn.Close()
			return false
		}
		c.state.Store(int32(ChannelOpen))
		return true
	}
	return false
}
