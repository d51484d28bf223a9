package rushx

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// OrderViewState tracks the selection lifecycle of an OrderView.
type OrderViewState int

const (
	// ViewUnselected means no order is selected.
	ViewUnselected OrderViewState = iota
	// ViewLoading means the REST baseline fetch is in flight.
	ViewLoading
	// ViewLive means the baseline is applied and both channels are
	// subscribed.
	ViewLive
)

func (s OrderViewState) String() string {
	switch s {
	case ViewUnselected:
		return "unselected"
	case ViewLoading:
		return "loading"
	case ViewLive:
		return "live"
	}
	return "unknown"
}

// BaselineSource fetches the REST baseline for an order. CustomerService
// satisfies it; any role service exposing the same endpoints can be plugged
// in.
type BaselineSource interface {
	GetTracking(ctx context.Context, orderID int64) (*OrderTracking, error)
	GetChat(ctx context.Context, orderID int64) ([]ChatMessage, error)
}

// OrderView merges the REST-fetched baseline of a single selected order with
// the live tracking and chat streams.
//
// Live frames that arrive before the baseline are buffered and flushed once
// the baseline lands, and frames duplicating a baseline entry are collapsed
// by identifier, so the visible lists stay append-only: baseline order first,
// live arrivals strictly after.
type OrderView struct {
	source   BaselineSource
	realtime *Realtime
	logger   *zap.Logger

	// OnUpdate, when set before Select, fires after every applied change:
	// baseline arrival, live frame, or replaced order snapshot. Invocations
	// are serialized, so the callback may keep unsynchronized state of its
	// own.
	OnUpdate func()

	notifyMu sync.Mutex

	mu            sync.Mutex
	gen           uint64
	state         OrderViewState
	orderID       int64
	order         *Order
	events        []TrackingEvent
	messages      []ChatMessage
	pendingEvents []TrackingEvent
	pendingChat   []ChatMessage
	baselineReady bool
	seenEvents    map[int64]struct{}
	seenChat      map[int64]struct{}
	trackingCh    *Channel
	chatCh        *Channel
}

// NewOrderView builds a view over the given baseline source and realtime
// manager.
func NewOrderView(source BaselineSource, realtime *Realtime, logger *zap.Logger) *OrderView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderView{
		source:   source,
		realtime: realtime,
		logger:   logger,
	}
}

// Select switches the view to orderID: tears down any previous selection,
// subscribes both live channels, then fetches and applies the REST baseline.
// A failed baseline fetch releases the channels and returns the view to the
// unselected state.
func (v *OrderView) Select(ctx context.Context, orderID int64) error {
	v.mu.Lock()
	v.teardownLocked()
	v.gen++
	gen := v.gen
	v.state = ViewLoading
	v.orderID = orderID
	v.order = nil
	v.events = nil
	v.messages = nil
	v.pendingEvents = nil
	v.pendingChat = nil
	v.baselineReady = false
	v.seenEvents = make(map[int64]struct{})
	v.seenChat = make(map[int64]struct{})
	v.mu.Unlock()

	// Subscribe before fetching so no frame falls between the baseline
	// snapshot and the live stream; early frames buffer until the baseline
	// is applied.
	trackingCh, err := v.realtime.OrderTracking(ctx, orderID, func(event TrackingEvent) {
		v.applyTracking(gen, event)
	})
	if err != nil {
		v.logger.Warn("tracking channel unavailable",
			zap.Int64("order_id", orderID), zap.Error(err))
	}
	chatCh, err := v.realtime.OrderChat(ctx, orderID, func(message ChatMessage) {
		v.applyChat(gen, message)
	})
	if err != nil {
		v.logger.Warn("chat channel unavailable",
			zap.Int64("order_id", orderID), zap.Error(err))
	}

	v.mu.Lock()
	if v.gen != gen {
		// The selection moved on while we were dialing.
		v.mu.Unlock()
		if trackingCh != nil {
			trackingCh.Close()
		}
		if chatCh != nil {
			chatCh.Close()
		}
		return nil
	}
	v.trackingCh = trackingCh
	v.chatCh = chatCh
	v.mu.Unlock()

	tracking, err := v.source.GetTracking(ctx, orderID)
	if err != nil {
		v.abortSelection(gen)
		return err
	}
	chat, err := v.source.GetChat(ctx, orderID)
	if err != nil {
		v.abortSelection(gen)
		return err
	}

	v.mu.Lock()
	if v.gen != gen {
		// Late-arriving baseline for a deselected order: ignore.
		v.mu.Unlock()
		return nil
	}
	order := tracking.Order
	v.order = &order
	v.events = append([]TrackingEvent(nil), tracking.Events...)
	for _, event := range v.events {
		v.seenEvents[event.ID] = struct{}{}
	}
	v.messages = append([]ChatMessage(nil), chat...)
	for _, message := range v.messages {
		v.seenChat[message.ID] = struct{}{}
	}
	// Flush frames that raced the baseline fetch, dropping duplicates.
	for _, event := range v.pendingEvents {
		v.appendEventLocked(event)
	}
	for _, message := range v.pendingChat {
		v.appendChatLocked(message)
	}
	v.pendingEvents = nil
	v.pendingChat = nil
	v.baselineReady = true
	v.state = ViewLive
	v.mu.Unlock()

	v.notify()
	return nil
}

// Deselect releases both channels and returns the view to the unselected
// state. Reaching a terminal order status does not close channels on its
// own; this is the release point.
func (v *OrderView) Deselect() {
	v.mu.Lock()
	v.teardownLocked()
	v.gen++
	v.state = ViewUnselected
	v.orderID = 0
	v.order = nil
	v.baselineReady = false
	v.mu.Unlock()
}

// ApplyOrder replaces the order snapshot wholesale with the server's
// response to an accepted mutation, when it matches the current selection.
func (v *OrderView) ApplyOrder(order Order) {
	v.mu.Lock()
	if v.state == ViewUnselected || order.ID != v.orderID {
		v.mu.Unlock()
		return
	}
	v.order = &order
	v.mu.Unlock()
	v.notify()
}

// SendChat sends a message over the selected order's chat channel.
func (v *OrderView) SendChat(message string) error {
	v.mu.Lock()
	ch := v.chatCh
	v.mu.Unlock()
	if ch == nil {
		return ErrChannelClosed
	}
	return ch.SendChat(message)
}

// State returns the current selection state.
func (v *OrderView) State() OrderViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SelectedOrderID returns the currently selected order id, zero when
// unselected.
func (v *OrderView) SelectedOrderID() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orderID
}

// Order returns a copy of the current order snapshot, nil before the
// baseline has arrived.
func (v *OrderView) Order() *Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.order == nil {
		return nil
	}
	order := *v.order
	return &order
}

// Events returns a copy of the merged tracking event list.
func (v *OrderView) Events() []TrackingEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]TrackingEvent(nil), v.events...)
}

// Messages returns a copy of the merged chat list.
func (v *OrderView) Messages() []ChatMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]ChatMessage(nil), v.messages...)
}

func (v *OrderView) applyTracking(gen uint64, event TrackingEvent) {
	v.mu.Lock()
	if v.gen != gen {
		v.mu.Unlock()
		return
	}
	if !v.baselineReady {
		v.pendingEvents = append(v.pendingEvents, event)
		v.mu.Unlock()
		return
	}
	changed := v.appendEventLocked(event)
	v.mu.Unlock()
	if changed {
		v.notify()
	}
}

func (v *OrderView) applyChat(gen uint64, message ChatMessage) {
	v.mu.Lock()
	if v.gen != gen {
		v.mu.Unlock()
		return
	}
	if !v.baselineReady {
		v.pendingChat = append(v.pendingChat, message)
		v.mu.Unlock()
		return
	}
	changed := v.appendChatLocked(message)
	v.mu.Unlock()
	if changed {
		v.notify()
	}
}

func (v *OrderView) appendEventLocked(event TrackingEvent) bool {
	if _, seen := v.seenEvents[event.ID]; seen {
		return false
	}
	v.seenEvents[event.ID] = struct{}{}
	v.events = append(v.events, event)
	if v.order != nil && event.Status != "" {
		v.order.Status = event.Status
	}
	return true
}

func (v *OrderView) appendChatLocked(message ChatMessage) bool {
	if _, seen := v.seenChat[message.ID]; seen {
		return false
	}
	v.seenChat[message.ID] = struct{}{}
	v.messages = append(v.messages, message)
	return true
}

// abortSelection rolls back a failed Select, unless a newer selection has
// already taken over.
func (v *OrderView) abortSelection(gen uint64) {
	v.mu.Lock()
	if v.gen != gen {
		v.mu.Unlock()
		return
	}
	v.teardownLocked()
	v.state = ViewUnselected
	v.orderID = 0
	v.mu.Unlock()
}

func (v *OrderView) teardownLocked() {
	if v.trackingCh != nil {
		v.trackingCh.Close()
		v.trackingCh = nil
	}
	if v.chatCh != nil {
		v.chatCh.Close()
		v.chatCh = nil
	}
}

// notify fires OnUpdate under its own mutex. Tracking and chat frames arrive
// on separate read goroutines; without serialization the callback would race
// against itself.
func (v *OrderView) notify() {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	if v.OnUpdate != nil {
		v.OnUpdate()
	}
}
