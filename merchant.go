package rushx

import (
	"context"
	"fmt"
)

// MerchantService handles merchant-scoped resources under /api/merchant/.
type MerchantService struct {
	client *Client
}

// ListBranches returns the merchant's branches.
func (s *MerchantService) ListBranches(ctx context.Context) ([]MerchantBranch, error) {
	var branches []MerchantBranch
	if err := s.client.get(ctx, "/api/merchant/branches/", &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// CreateBranch adds a new pickup location.
func (s *MerchantService) CreateBranch(ctx context.Context, branch MerchantBranch) (*MerchantBranch, error) {
	var created MerchantBranch
	if err := s.client.post(ctx, "/api/merchant/branches/", branch, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBranch patches an existing branch.
func (s *MerchantService) UpdateBranch(ctx context.Context, id int64, branch MerchantBranch) (*MerchantBranch, error) {
	var updated MerchantBranch
	path := fmt.Sprintf("/api/merchant/branches/%d/", id)
	if err := s.client.patch(ctx, path, branch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBranch removes a branch.
func (s *MerchantService) DeleteBranch(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/merchant/branches/%d/", id))
}

// ListInventory returns all inventory items across the merchant's branches.
func (s *MerchantService) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	var items []InventoryItem
	if err := s.client.get(ctx, "/api/merchant/inventory/", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateInventory adds an item to a branch's inventory.
func (s *MerchantService) CreateInventory(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	var created InventoryItem
	if err := s.client.post(ctx, "/api/merchant/inventory/", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateInventory patches an inventory item.
func (s *MerchantService) UpdateInventory(ctx context.Context, id int64, item InventoryItem) (*InventoryItem, error) {
	var updated InventoryItem
	path := fmt.Sprintf("/api/merchant/inventory/%d/", id)
	if err := s.client.patch(ctx, path, item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteInventory removes an inventory item.
func (s *MerchantService) DeleteInventory(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/merchant/inventory/%d/", id))
}

// ListOrders returns orders placed against the merchant's branches.
func (s *MerchantService) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.client.get(ctx, "/api/merchant/orders/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to a new status. The returned order
// replaces the local copy.
func (s *MerchantService) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) (*Order, error) {
	body := map[string]OrderStatus{"status": status}
	var order Order
	path := fmt.Sprintf("/api/merchant/orders/%d/status/", orderID)
	if err := s.client.post(ctx, path, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Analytics returns the merchant dashboard aggregates.
func (s *MerchantService) Analytics(ctx context.Context) (*MerchantAnalytics, error) {
	var analytics MerchantAnalytics
	if err := s.client.get(ctx, "/api/merchant/analytics/", &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}
