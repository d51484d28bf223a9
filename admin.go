package rushx

import (
	"context"
	"fmt"
	"net/url"
)

// AdminService handles admin-scoped resources under /api/admin/.
type AdminService struct {
	client *Client
}

// RiderKYC is the acknowledgement returned after a KYC decision.
type RiderKYC struct {
	ID        int64  `json:"id"`
	KYCStatus string `json:"kyc_status"`
}

// ListUsers returns platform users, optionally filtered by role.
func (s *AdminService) ListUsers(ctx context.Context, role Role) ([]User, error) {
	path := "/api/admin/users/"
	if role != "" {
		path += "?role=" + url.QueryEscape(string(role))
	}
	var users []User
	if err := s.client.get(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserStatus suspends or reinstates a user. The returned record
// replaces the local list entry for that user id only.
func (s *AdminService) UpdateUserStatus(ctx context.Context, userID int64, suspended bool) (*User, error) {
	body := map[string]bool{"is_suspended": suspended}
	var user User
	path := fmt.Sprintf("/api/admin/users/%d/status/", userID)
	if err := s.client.post(ctx, path, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRiderKYC records a KYC decision for a rider.
func (s *AdminService) UpdateRiderKYC(ctx context.Context, riderID int64, kycStatus string) (*RiderKYC, error) {
	body := map[string]string{"kyc_status": kycStatus}
	var kyc RiderKYC
	path := fmt.Sprintf("/api/admin/riders/%d/kyc/", riderID)
	if err := s.client.post(ctx, path, body, &kyc); err != nil {
		return nil, err
	}
	return &kyc, nil
}

// ReplaceUser swaps the list entry matching updated.ID for the server's
// record, leaving every other entry untouched. Views apply it to their user
// list after a status mutation.
func ReplaceUser(users []User, updated User) []User {
	result := append([]User(nil), users...)
	for i := range result {
		if result[i].ID == updated.ID {
			result[i] = updated
		}
	}
	return result
}

// ListOrders returns all platform orders.
func (s *AdminService) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.client.get(ctx, "/api/admin/orders/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ReassignOrder moves an order to a different rider.
func (s *AdminService) ReassignOrder(ctx context.Context, orderID, riderID int64) (*Order, error) {
	body := map[string]int64{"rider_id": riderID}
	var order Order
	path := fmt.Sprintf("/api/admin/orders/%d/reassign/", orderID)
	if err := s.client.post(ctx, path, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetDeliveryFee returns the platform delivery fee setting.
func (s *AdminService) GetDeliveryFee(ctx context.Context) (*DeliveryFeeSetting, error) {
	var setting DeliveryFeeSetting
	if err := s.client.get(ctx, "/api/admin/settings/delivery-fee/", &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateDeliveryFee sets the platform delivery fee. The fee is an exact
// decimal string such as "5.00".
func (s *AdminService) UpdateDeliveryFee(ctx context.Context, deliveryFee string) (*DeliveryFeeSetting, error) {
	body := map[string]string{"delivery_fee": deliveryFee}
	var setting DeliveryFeeSetting
	if err := s.client.post(ctx, "/api/admin/settings/delivery-fee/", body, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}
