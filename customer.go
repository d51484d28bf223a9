package rushx

import (
	"context"
	"fmt"
)

// CustomerService handles customer-scoped resources under /api/customer/.
type CustomerService struct {
	client *Client
}

// OrderItemRequest references an inventory item and a positive quantity.
type OrderItemRequest struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	Quantity        int   `json:"quantity"`
}

// QuoteOrderRequest asks for a provisional price for a prospective order.
type QuoteOrderRequest struct {
	MerchantBranchID int64              `json:"merchant_branch_id"`
	DropoffAddressID int64              `json:"dropoff_address_id"`
	Items            []OrderItemRequest `json:"items"`
}

// CreateOrderRequest creates an order from a quote's fields.
type CreateOrderRequest struct {
	MerchantBranchID int64              `json:"merchant_branch_id"`
	DropoffAddressID int64              `json:"dropoff_address_id"`
	Items            []OrderItemRequest `json:"items"`
	PaymentProvider  string             `json:"payment_provider"`
}

// OrderTracking is the tracking baseline: the order record plus its
// historical tracking events in server order.
type OrderTracking struct {
	Order  Order           `json:"order"`
	Events []TrackingEvent `json:"events"`
}

// ListAddresses returns the customer's saved delivery addresses.
func (s *CustomerService) ListAddresses(ctx context.Context) ([]Address, error) {
	var addresses []Address
	if err := s.client.get(ctx, "/api/customer/addresses/", &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// CreateAddress saves a new delivery address.
func (s *CustomerService) CreateAddress(ctx context.Context, address Address) (*Address, error) {
	var created Address
	if err := s.client.post(ctx, "/api/customer/addresses/", address, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAddress patches an existing address.
func (s *CustomerService) UpdateAddress(ctx context.Context, id int64, address Address) (*Address, error) {
	var updated Address
	path := fmt.Sprintf("/api/customer/addresses/%d/", id)
	if err := s.client.patch(ctx, path, address, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAddress removes an address.
func (s *CustomerService) DeleteAddress(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/customer/addresses/%d/", id))
}

// QuoteOrder computes a provisional price for the given branch, dropoff
// address and line items. All items must carry a positive quantity.
func (s *CustomerService) QuoteOrder(ctx context.Context, req QuoteOrderRequest) (*OrderQuote, error) {
	var quote OrderQuote
	if err := s.client.post(ctx, "/api/customer/orders/quote/", req, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateOrder creates an order from the quote's fields.
func (s *CustomerService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := s.client.post(ctx, "/api/customer/orders/", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder confirms payment for a created order. The returned order
// supersedes any local copy wholesale.
func (s *CustomerService) ConfirmOrder(ctx context.Context, orderID int64, providerReference string) (*Order, error) {
	body := map[string]string{"provider_reference": providerReference}
	var order Order
	path := fmt.Sprintf("/api/customer/orders/%d/confirm/", orderID)
	if err := s.client.post(ctx, path, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the customer's order history.
func (s *CustomerService) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.client.get(ctx, "/api/customer/orders/history/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Reorder creates a fresh order with the same items as a past one.
func (s *CustomerService) Reorder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/api/customer/orders/%d/reorder/", orderID)
	if err := s.client.post(ctx, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetTracking returns the tracking baseline for an order.
func (s *CustomerService) GetTracking(ctx context.Context, orderID int64) (*OrderTracking, error) {
	var tracking OrderTracking
	path := fmt.Sprintf("/api/customer/orders/%d/tracking/", orderID)
	if err := s.client.get(ctx, path, &tracking); err != nil {
		return nil, err
	}
	return &tracking, nil
}

// GetChat returns the chat history baseline for an order, in server order.
func (s *CustomerService) GetChat(ctx context.Context, orderID int64) ([]ChatMessage, error) {
	var messages []ChatMessage
	path := fmt.Sprintf("/api/customer/orders/%d/chat/", orderID)
	if err := s.client.get(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
