package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/tanpawarit/ai-support-router/agent/state"
)

func TestGetOrderDetailsFound(t *testing.T) {
	t.Parallel()

	c := NewCatalog(demoLookup())
	out := c.getOrderDetails(context.Background(), map[string]any{"identifier": "ORD-001"})

	got, ok := out.(OrderDetails)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if !got.Found {
		t.Fatal("expected found=true")
	}
	if got.Order.TotalAmount != "$299.99 USD" {
		t.Fatalf("totalAmount = %q", got.Order.TotalAmount)
	}
	if got.Order.TrackingNumber != "TRK-9876543210" {
		t.Fatalf("trackingNumber = %q", got.Order.TrackingNumber)
	}
	if got.Order.EstimatedDelivery != "Wed Mar 05 2025" {
		t.Fatalf("estimatedDelivery = %q", got.Order.EstimatedDelivery)
	}
	if got.Order.PlacedOn != "Mon Mar 03 2025" {
		t.Fatalf("placedOn = %q", got.Order.PlacedOn)
	}
	if got.Order.DeliveredAt != nil {
		t.Fatalf("deliveredAt = %v, want nil", *got.Order.DeliveredAt)
	}
}

func TestGetOrderDetailsDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	c := NewCatalog(demoLookup())
	got := c.getOrderDetails(context.Background(), map[string]any{"identifier": "ORD-004"}).(OrderDetails)
	if got.Order.TrackingNumber != "Not yet assigned" {
		t.Fatalf("trackingNumber = %q", got.Order.TrackingNumber)
	}
	if got.Order.ShippingAddress != "Not specified" {
		t.Fatalf("shippingAddress = %q", got.Order.ShippingAddress)
	}
	if got.Order.EstimatedDelivery != "Not available" {
		t.Fatalf("estimatedDelivery = %q", got.Order.EstimatedDelivery)
	}
}

func TestGetOrderDetailsNotFound(t *testing.T) {
	t.Parallel()

	c := NewCatalog(demoLookup())
	out := c.getOrderDetails(context.Background(), map[string]any{"identifier": "ORD-999"})

	nf, ok := out.(NotFound)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if nf.Message != `No order found for "ORD-999". Please check the order number.` {
		t.Fatalf("message = %q", nf.Message)
	}
}

func TestGetOrderDetailsStoreFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	lookup := demoLookup()
	lookup.err = errors.New("connection refused")
	out := NewCatalog(lookup).getOrderDetails(context.Background(), map[string]any{"identifier": "ORD-001"})

	nf, ok := out.(NotFound)
	if !ok || nf.Found {
		t.Fatalf("unexpected result: %#v", out)
	}
	if nf.Message != "Failed to retrieve order details." {
		t.Fatalf("message = %q", nf.Message)
	}
}

func TestGetOrderDetailsInvalidArgs(t *testing.T) {
	t.Parallel()

	c := NewCatalog(demoLookup())
	for _, args := range []map[string]any{
		{},
		{"identifier": ""},
		{"identifier": 42.0},
	} {
		out := c.getOrderDetails(context.Background(), args)
		if nf, ok := out.(NotFound); !ok || nf.Found {
			t.Fatalf("args %v: unexpected result %#v", args, out)
		}
	}
}

func TestCheckDeliveryStatus(t *testing.T) {
	t.Parallel()

	c := NewCatalog(demoLookup())
	out := c.checkDeliveryStatus(context.Background(), map[string]any{"trackingNumber": "TRK-9876543210"})

	got, ok := out.(DeliveryStatus)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if got.Tracking.OrderNumber != "ORD-001" {
		t.Fatalf("orderNumber = %q", got.Tracking.OrderNumber)
	}
	if got.Tracking.CurrentLocation != deliveryLocations[state.OrderShipped] {
		t.Fatalf("currentLocation = %q", got.Tracking.CurrentLocation)
	}

	missing := c.checkDeliveryStatus(context.Background(), map[string]any{"trackingNumber": "TRK-0"})
	if nf, ok := missing.(NotFound); !ok || nf.Message != `No shipment found for tracking number "TRK-0".` {
		t.Fatalf("unexpected result: %#v", missing)
	}
}

func TestListUserOrdersStatusFilter(t *testing.T) {
	t.Parallel()

	lookup := demoLookup()
	c := NewCatalog(lookup)

	out := c.listUserOrders(context.Background(), map[string]any{"userId": "user_demo", "status": "all"})
	got, ok := out.(OrderList)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if lookup.lastOrderStatus != "" {
		t.Fatalf("status filter = %q, want empty for all", lookup.lastOrderStatus)
	}
	if got.TotalOrders != 2 {
		t.Fatalf("totalOrders = %d, want 2", got.TotalOrders)
	}
	if got.Orders[0].TotalAmount != "$299.99" || got.Orders[0].ItemCount != 2 {
		t.Fatalf("unexpected first order: %#v", got.Orders[0])
	}
	if got.Orders[1].TrackingNumber != "N/A" {
		t.Fatalf("trackingNumber = %q, want N/A", got.Orders[1].TrackingNumber)
	}

	out = c.listUserOrders(context.Background(), map[string]any{"userId": "user_demo", "status": "delivered"})
	if nf, ok := out.(NotFound); !ok || nf.Message != "No orders found for this account." {
		t.Fatalf("unexpected result: %#v", out)
	}

	out = c.listUserOrders(context.Background(), map[string]any{"userId": "user_demo", "status": "lost"})
	if nf, ok := out.(NotFound); !ok || nf.Found {
		t.Fatalf("unexpected result for invalid status: %#v", out)
	}
}
