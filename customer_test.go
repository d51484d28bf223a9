package rushx

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_QuoteCreateConfirmFlow(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/customer/orders/quote/", func(w http.ResponseWriter, req *http.Request) {
		var body QuoteOrderRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, int64(3), body.MerchantBranchID)
		assert.Equal(t, int64(8), body.DropoffAddressID)
		require.Len(t, body.Items, 1)
		assert.Equal(t, 2, body.Items[0].Quantity)

		_, _ = w.Write([]byte(`{
			"merchant_branch_id": 3,
			"dropoff_address_id": 8,
			"items": [{"inventory_item_id": 11, "name": "Jollof", "quantity": 2, "unit_price": "10.00"}],
			"subtotal": "20.00",
			"delivery_fee": "5.00",
			"total": "25.00"
		}`))
	})
	r.Post("/api/customer/orders/", func(w http.ResponseWriter, req *http.Request) {
		var body CreateOrderRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "paystack", body.PaymentProvider)
		_, _ = w.Write([]byte(`{"id": 42, "status": "CREATED", "subtotal": "20.00", "delivery_fee": "5.00", "total": "25.00"}`))
	})
	r.Post("/api/customer/orders/42/confirm/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "ps-ref-1", body["provider_reference"])
		_, _ = w.Write([]byte(`{"id": 42, "status": "CONFIRMED", "total": "25.00"}`))
	})

	client, recorder := newTestClient(t, r)
	ctx := context.Background()

	quote, err := client.Customer.QuoteOrder(ctx, QuoteOrderRequest{
		MerchantBranchID: 3,
		DropoffAddressID: 8,
		Items:            []OrderItemRequest{{InventoryItemID: 11, Quantity: 2}},
	})
	require.NoError(t, err)
	// The server's exact decimal strings pass through untouched
	assert.Equal(t, "25.00", quote.Total)
	assert.Equal(t, "5.00", quote.DeliveryFee)

	order, err := client.Customer.CreateOrder(ctx, CreateOrderRequest{
		MerchantBranchID: quote.MerchantBranchID,
		DropoffAddressID: quote.DropoffAddressID,
		Items:            []OrderItemRequest{{InventoryItemID: 11, Quantity: 2}},
		PaymentProvider:  "paystack",
	})
	require.NoError(t, err)
	assert.Equal(t, OrderCreated, order.Status)

	confirmed, err := client.Customer.ConfirmOrder(ctx, order.ID, "ps-ref-1")
	require.NoError(t, err)
	assert.Equal(t, OrderConfirmed, confirmed.Status)
	assert.Equal(t, int64(42), confirmed.ID)

	assert.Equal(t, 0, recorder.count(), "happy path emits no notices")
}

func TestCustomer_QuoteFailureSurfacesDetail(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/customer/orders/quote/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Item quantity must be positive."}`))
	})

	client, recorder := newTestClient(t, r)

	_, err := client.Customer.QuoteOrder(context.Background(), QuoteOrderRequest{MerchantBranchID: 3})
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsValidationError())
	assert.Equal(t, "Item quantity must be positive.", apiErr.Message)
	assert.Equal(t, 1, recorder.count())
}

func TestCustomer_AddressLifecycle(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/customer/addresses/", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "label": "Home", "address_line1": "12 Oak St", "city": "Accra", "country": "GH"}]`))
	})
	r.Post("/api/customer/addresses/", func(w http.ResponseWriter, req *http.Request) {
		var body Address
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		body.ID = 2
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	})
	r.Patch("/api/customer/addresses/2/", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"id": 2, "label": "Office", "address_line1": "1 Ring Rd", "city": "Accra", "country": "GH"}`))
	})
	r.Delete("/api/customer/addresses/2/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, r)
	ctx := context.Background()

	addresses, err := client.Customer.ListAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "Home", addresses[0].Label)

	created, err := client.Customer.CreateAddress(ctx, Address{Label: "Work", AddressLine1: "1 Ring Rd", City: "Accra", Country: "GH"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)

	updated, err := client.Customer.UpdateAddress(ctx, 2, Address{Label: "Office"})
	require.NoError(t, err)
	assert.Equal(t, "Office", updated.Label)

	require.NoError(t, client.Customer.DeleteAddress(ctx, 2))
}

func TestCustomer_OrderHistoryAndReorder(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/customer/orders/history/", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 42, "status": "DELIVERED", "total": "25.00"},
			{"id": 41, "status": "CANCELED", "total": "13.50"}
		]`))
	})
	r.Post("/api/customer/orders/42/reorder/", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"id": 43, "status": "CREATED", "total": "25.00"}`))
	})

	client, _ := newTestClient(t, r)
	ctx := context.Background()

	orders, err := client.Customer.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].Status.Terminal())

	reordered, err := client.Customer.Reorder(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(43), reordered.ID)
	assert.Equal(t, OrderCreated, reordered.Status)
}

func TestCustomer_GetChatAcceptsHistoryWireShape(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/customer/orders/42/chat/", func(w http.ResponseWriter, req *http.Request) {
		// History serializes references without the _id suffix
		_, _ = w.Write([]byte(`[{"id": 1, "order": 42, "sender": 7, "recipient": 9, "message": "hello"}]`))
	})

	client, _ := newTestClient(t, r)

	messages, err := client.Customer.GetChat(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(42), messages[0].Order)
	assert.Equal(t, int64(7), messages[0].Sender)
	assert.Equal(t, int64(9), messages[0].Recipient)
}

func TestCustomer_GetTrackingReturnsBaseline(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/customer/orders/42/tracking/", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{
			"order": {"id": 42, "status": "IN_TRANSIT", "total": "25.00"},
			"events": [
				{"id": 1, "order_id": 42, "status": "CONFIRMED"},
				{"id": 2, "order_id": 42, "status": "ASSIGNED"},
				{"id": 3, "order_id": 42, "status": "IN_TRANSIT", "latitude": "5.6037", "longitude": "-0.1870"}
			]
		}`))
	})

	client, _ := newTestClient(t, r)

	tracking, err := client.Customer.GetTracking(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, OrderInTransit, tracking.Order.Status)
	require.Len(t, tracking.Events, 3)
	require.NotNil(t, tracking.Events[2].Latitude)
	assert.Equal(t, "5.6037", *tracking.Events[2].Latitude)
}
