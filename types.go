// Package rushx provides the Go client SDK for the RushExpress delivery
// marketplace API.
//
// The SDK wraps the REST endpoints behind typed role-scoped services
// (Customer, Merchant, Rider, Admin), manages WebSocket channels for live
// order tracking, chat and notifications, and keeps an authenticated session
// with durable token persistence.
package rushx

import (
	"encoding/json"
	"time"
)

// Role identifies which portal a user belongs to.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleRider    Role = "RIDER"
	RoleMerchant Role = "MERCHANT"
	RoleAdmin    Role = "ADMIN"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderAssigned  OrderStatus = "ASSIGNED"
	OrderPickedUp  OrderStatus = "PICKED_UP"
	OrderInTransit OrderStatus = "IN_TRANSIT"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// Terminal reports whether the status ends the order lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCanceled
}

// UserProfile carries role-specific profile fields. Only the fields relevant
// to the user's role are populated.
type UserProfile struct {
	PhoneNumber   string `json:"phone_number,omitempty"`
	BusinessName  string `json:"business_name,omitempty"`
	SupportEmail  string `json:"support_email,omitempty"`
	KYCStatus     string `json:"kyc_status,omitempty"`
	VehicleType   string `json:"vehicle_type,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
}

// User is an authenticated account in any of the four portals.
type User struct {
	ID          int64        `json:"id" validate:"required"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Role        Role         `json:"role" validate:"required"`
	IsSuspended bool         `json:"is_suspended"`
	IsVerified  bool         `json:"is_verified"`
	Profile     *UserProfile `json:"profile,omitempty"`
}

// AuthTokens is the access/refresh token pair issued on login.
type AuthTokens struct {
	Access  string `json:"access" validate:"required"`
	Refresh string `json:"refresh"`
}

// AuthResponse is returned by registration: tokens plus the created user.
type AuthResponse struct {
	AuthTokens
	User User `json:"user"`
}

// Address is a customer delivery address.
type Address struct {
	ID           int64   `json:"id"`
	Label        string  `json:"label,omitempty"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state,omitempty"`
	PostalCode   string  `json:"postal_code,omitempty"`
	Country      string  `json:"country"`
	Latitude     *string `json:"latitude,omitempty"`
	Longitude    *string `json:"longitude,omitempty"`
}

// OrderItem is a single line item on an order.
type OrderItem struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	InventoryItem *int64 `json:"inventory_item,omitempty"`
}

// Order is the full order record as returned by the backend. Monetary fields
// are exact decimal strings; never parse them into floats.
type Order struct {
	ID             int64       `json:"id" validate:"required"`
	Status         OrderStatus `json:"status" validate:"required"`
	MerchantBranch int64       `json:"merchant_branch"`
	Rider          *int64      `json:"rider,omitempty"`

	PickupAddressLine1 string  `json:"pickup_address_line1"`
	PickupAddressLine2 string  `json:"pickup_address_line2,omitempty"`
	PickupCity         string  `json:"pickup_city"`
	PickupState        string  `json:"pickup_state,omitempty"`
	PickupPostalCode   string  `json:"pickup_postal_code,omitempty"`
	PickupCountry      string  `json:"pickup_country"`
	PickupLatitude     *string `json:"pickup_latitude,omitempty"`
	PickupLongitude    *string `json:"pickup_longitude,omitempty"`

	DropoffAddressLine1 string  `json:"dropoff_address_line1"`
	DropoffAddressLine2 string  `json:"dropoff_address_line2,omitempty"`
	DropoffCity         string  `json:"dropoff_city"`
	DropoffState        string  `json:"dropoff_state,omitempty"`
	DropoffPostalCode   string  `json:"dropoff_postal_code,omitempty"`
	DropoffCountry      string  `json:"dropoff_country"`
	DropoffLatitude     *string `json:"dropoff_latitude,omitempty"`
	DropoffLongitude    *string `json:"dropoff_longitude,omitempty"`

	Subtotal    string      `json:"subtotal"`
	DeliveryFee string      `json:"delivery_fee"`
	Total       string      `json:"total"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Items       []OrderItem `json:"items"`
}

// TrackingEvent is one entry in an order's append-only tracking history.
// The REST history returns the prefix; live frames deliver the suffix.
type TrackingEvent struct {
	ID        int64       `json:"id" validate:"required"`
	OrderID   int64       `json:"order_id,omitempty"`
	Status    OrderStatus `json:"status" validate:"required"`
	Latitude  *string     `json:"latitude,omitempty"`
	Longitude *string     `json:"longitude,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatMessage is one message in an order's chat thread.
//
// The REST history endpoint serializes references as "order", "sender" and
// "recipient" while live frames use "order_id", "sender_id" and
// "recipient_id"; UnmarshalJSON accepts either shape.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Order     int64     `json:"order"`
	Sender    int64     `json:"sender"`
	Recipient int64     `json:"recipient"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          int64     `json:"id"`
		Order       int64     `json:"order"`
		OrderID     int64     `json:"order_id"`
		Sender      int64     `json:"sender"`
		SenderID    int64     `json:"sender_id"`
		Recipient   int64     `json:"recipient"`
		RecipientID int64     `json:"recipient_id"`
		Message     string    `json:"message"`
		CreatedAt   time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ID
	m.Order = raw.Order
	if m.Order == 0 {
		m.Order = raw.OrderID
	}
	m.Sender = raw.Sender
	if m.Sender == 0 {
		m.Sender = raw.SenderID
	}
	m.Recipient = raw.Recipient
	if m.Recipient == 0 {
		m.Recipient = raw.RecipientID
	}
	m.Message = raw.Message
	m.CreatedAt = raw.CreatedAt
	return nil
}

// Notification is a user-scoped event pushed over the notifications channel.
type Notification struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// QuoteItem is a priced line item inside an order quote.
type QuoteItem struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
}

// OrderQuote is the provisional price computation for a prospective order.
type OrderQuote struct {
	MerchantBranchID int64       `json:"merchant_branch_id"`
	DropoffAddressID int64       `json:"dropoff_address_id"`
	Items            []QuoteItem `json:"items"`
	Subtotal         string      `json:"subtotal" validate:"required"`
	DeliveryFee      string      `json:"delivery_fee" validate:"required"`
	Total            string      `json:"total" validate:"required"`
}

// MerchantBranch is a merchant pickup location.
type MerchantBranch struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state,omitempty"`
	PostalCode   string  `json:"postal_code,omitempty"`
	Country      string  `json:"country"`
	Latitude     *string `json:"latitude,omitempty"`
	Longitude    *string `json:"longitude,omitempty"`
}

// InventoryItem is a sellable item at a merchant branch.
type InventoryItem struct {
	ID          int64  `json:"id"`
	Branch      int64  `json:"branch"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

// MerchantAnalytics is the aggregate dashboard payload for a merchant.
type MerchantAnalytics struct {
	TotalOrders     int    `json:"total_orders"`
	CompletedOrders int    `json:"completed_orders"`
	CanceledOrders  int    `json:"canceled_orders"`
	TotalRevenue    string `json:"total_revenue"`
}

// RiderAvailability is a rider's online flag and working schedule.
type RiderAvailability struct {
	IsOnline  bool            `json:"is_online"`
	Schedule  json.RawMessage `json:"schedule,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RiderLocation is the rider's last reported position.
type RiderLocation struct {
	Latitude  *string   `json:"latitude,omitempty"`
	Longitude *string   `json:"longitude,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RiderEarnings is one settlement period of a rider's earnings.
type RiderEarnings struct {
	ID              int64  `json:"id"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
	TotalDeliveries int    `json:"total_deliveries"`
	TotalEarnings   string `json:"total_earnings"`
}

// DeliveryFeeSetting is the platform-wide flat delivery fee.
type DeliveryFeeSetting struct {
	DeliveryFee string    `json:"delivery_fee" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageResponse is the generic {"message": ...} acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
