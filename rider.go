package rushx

import (
	"context"
	"fmt"
)

// RiderService handles rider-scoped resources under /api/rider/.
type RiderService struct {
	client *Client
}

// RiderStatusUpdate moves an order along the delivery lifecycle, optionally
// stamping the rider's position onto the tracking event.
type RiderStatusUpdate struct {
	Status    OrderStatus `json:"status"`
	Latitude  *string     `json:"latitude,omitempty"`
	Longitude *string     `json:"longitude,omitempty"`
}

// LocationUpdate is the rider's reported position; coordinates are decimal
// strings to match the backend's exact-decimal handling.
type LocationUpdate struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// GetAvailability returns the rider's availability record.
func (s *RiderService) GetAvailability(ctx context.Context) (*RiderAvailability, error) {
	var availability RiderAvailability
	if err := s.client.get(ctx, "/api/rider/availability/", &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// SetAvailability updates the rider's online flag and schedule.
func (s *RiderService) SetAvailability(ctx context.Context, availability RiderAvailability) (*RiderAvailability, error) {
	var updated RiderAvailability
	if err := s.client.post(ctx, "/api/rider/availability/", availability, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AvailableOrders lists confirmed orders waiting for a rider.
func (s *RiderService) AvailableOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.client.get(ctx, "/api/rider/orders/available/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// AcceptOrder claims an available order. The returned order carries status
// ASSIGNED and becomes the rider's active order.
func (s *RiderService) AcceptOrder(ctx context.Context, orderID int64) (*Order, error) {
	body := map[string]int64{"order_id": orderID}
	var order Order
	if err := s.client.post(ctx, "/api/rider/orders/accept/", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RemoveOrder drops the order with the given id from a list, leaving the
// rest in place. Views apply it to the available-orders list after an
// accepted claim.
func RemoveOrder(orders []Order, orderID int64) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		if order.ID != orderID {
			result = append(result, order)
		}
	}
	return result
}

// UpdateOrderStatus advances the active order's status.
func (s *RiderService) UpdateOrderStatus(ctx context.Context, orderID int64, update RiderStatusUpdate) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/api/rider/orders/%d/status/", orderID)
	if err := s.client.post(ctx, path, update, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateLocation reports the rider's current position.
func (s *RiderService) UpdateLocation(ctx context.Context, update LocationUpdate) (*RiderLocation, error) {
	var location RiderLocation
	if err := s.client.post(ctx, "/api/rider/location/", update, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// Earnings lists the rider's settlement periods.
func (s *RiderService) Earnings(ctx context.Context) ([]RiderEarnings, error) {
	var earnings []RiderEarnings
	if err := s.client.get(ctx, "/api/rider/earnings/", &earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}
