package tool

import (
	"context"
	"errors"
	"slices"

	"github.com/cloudwego/eino/schema"
	"github.com/tanpawarit/ai-support-router/agent/state"
)

var orderStatusFilters = []string{"pending", "processing", "shipped", "delivered", "cancelled", "all"}

var (
	getOrderDetailsInfo = &schema.ToolInfo{
		Name: ToolGetOrderDetails,
		Desc: "Fetch full details of a customer order by order number (e.g. ORD-001) or order ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"identifier": {Type: schema.String, Desc: "Order number like ORD-001 or order ID", Required: true},
		}),
	}
	checkDeliveryStatusInfo = &schema.ToolInfo{
		Name: ToolCheckDeliveryStatus,
		Desc: "Check delivery and tracking status using a tracking number like TRK-9876543210.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"trackingNumber": {Type: schema.String, Desc: "Tracking number e.g. TRK-9876543210", Required: true},
		}),
	}
	listUserOrdersInfo = &schema.ToolInfo{
		Name: ToolListUserOrders,
		Desc: "List all orders for the current user. Use when asked about order history.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"userId": {Type: schema.String, Desc: "User ID to fetch orders for", Required: true},
			"status": {Type: schema.String, Desc: "Optional status filter", Enum: orderStatusFilters},
		}),
	}
)

var deliveryLocations = map[state.OrderStatus]string{
	state.OrderPending:    "Awaiting processing at warehouse",
	state.OrderProcessing: "Being prepared at fulfillment center",
	state.OrderShipped:    "In transit, Regional Distribution Center",
	state.OrderDelivered:  "Delivered to destination",
	state.OrderCancelled:  "Order cancelled",
}

type OrderView struct {
	OrderNumber       string            `json:"orderNumber"`
	Status            state.OrderStatus `json:"status"`
	TrackingNumber    string            `json:"trackingNumber"`
	TotalAmount       string            `json:"totalAmount"`
	Items             []state.OrderItem `json:"items"`
	ShippingAddress   string            `json:"shippingAddress"`
	EstimatedDelivery string            `json:"estimatedDelivery"`
	DeliveredAt       *string           `json:"deliveredAt"`
	PlacedOn          string            `json:"placedOn"`
}

type OrderDetails struct {
	Found bool      `json:"found"`
	Order OrderView `json:"order"`
}

type TrackingView struct {
	TrackingNumber    string            `json:"trackingNumber"`
	OrderNumber       string            `json:"orderNumber"`
	CurrentStatus     state.OrderStatus `json:"currentStatus"`
	CurrentLocation   string            `json:"currentLocation"`
	EstimatedDelivery string            `json:"estimatedDelivery"`
	DeliveredAt       *string           `json:"deliveredAt"`
}

type DeliveryStatus struct {
	Found    bool         `json:"found"`
	Tracking TrackingView `json:"tracking"`
}

type OrderSummary struct {
	OrderNumber    string            `json:"orderNumber"`
	Status         state.OrderStatus `json:"status"`
	TotalAmount    string            `json:"totalAmount"`
	ItemCount      int               `json:"itemCount"`
	PlacedOn       string            `json:"placedOn"`
	TrackingNumber string            `json:"trackingNumber"`
}

type OrderList struct {
	Found       bool           `json:"found"`
	TotalOrders int            `json:"totalOrders"`
	Orders      []OrderSummary `json:"orders"`
}

func (c *Catalog) getOrderDetails(ctx context.Context, args map[string]any) any {
	identifier, err := requiredString(args, "identifier")
	if err != nil {
		return invalidArgs(err)
	}

	order, err := c.store.FindOrder(ctx, identifier)
	if errors.Is(err, state.ErrRecordNotFound) {
		return notFound("No order found for %q. Please check the order number.", identifier)
	}
	if err != nil {
		return lookupFailed(ToolGetOrderDetails, err, "Failed to retrieve order details.")
	}

	return OrderDetails{
		Found: true,
		Order: OrderView{
			OrderNumber:       order.OrderNumber,
			Status:            order.Status,
			TrackingNumber:    stringOr(order.TrackingNumber, "Not yet assigned"),
			TotalAmount:       moneyWithCurrency(order.TotalAmount, order.Currency),
			Items:             itemsOrEmpty(order.Items),
			ShippingAddress:   stringOr(order.ShippingAddress, "Not specified"),
			EstimatedDelivery: stringOr(formatDatePtr(order.EstimatedDelivery, dateLayout), "Not available"),
			DeliveredAt:       formatDatePtr(order.DeliveredAt, dateLayout),
			PlacedOn:          formatDate(order.CreatedAt, dateLayout),
		},
	}
}

func (c *Catalog) checkDeliveryStatus(ctx context.Context, args map[string]any) any {
	trackingNumber, err := requiredString(args, "trackingNumber")
	if err != nil {
		return invalidArgs(err)
	}

	order, err := c.store.FindOrderByTracking(ctx, trackingNumber)
	if errors.Is(err, state.ErrRecordNotFound) {
		return notFound("No shipment found for tracking number %q.", trackingNumber)
	}
	if err != nil {
		return lookupFailed(ToolCheckDeliveryStatus, err, "Failed to retrieve tracking info.")
	}

	location, ok := deliveryLocations[order.Status]
	if !ok {
		location = "Unknown"
	}

	return DeliveryStatus{
		Found: true,
		Tracking: TrackingView{
			TrackingNumber:    trackingNumber,
			OrderNumber:       order.OrderNumber,
			CurrentStatus:     order.Status,
			CurrentLocation:   location,
			EstimatedDelivery: stringOr(formatDatePtr(order.EstimatedDelivery, dateLayout), "Not available"),
			DeliveredAt:       formatDatePtr(order.DeliveredAt, dateLayout),
		},
	}
}

func (c *Catalog) listUserOrders(ctx context.Context, args map[string]any) any {
	userID, err := requiredString(args, "userId")
	if err != nil {
		return invalidArgs(err)
	}
	status, err := optionalString(args, "status")
	if err != nil {
		return invalidArgs(err)
	}
	if status != "" && !slices.Contains(orderStatusFilters, status) {
		return notFound("Invalid arguments: status must be one of %v", orderStatusFilters)
	}
	if status == "all" {
		status = ""
	}

	orders, err := c.store.ListOrders(ctx, userID, state.OrderStatus(status))
	if err != nil {
		return lookupFailed(ToolListUserOrders, err, "Failed to retrieve orders.")
	}
	if len(orders) == 0 {
		return notFound("No orders found for this account.")
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			OrderNumber:    o.OrderNumber,
			Status:         o.Status,
			TotalAmount:    money(o.TotalAmount),
			ItemCount:      len(o.Items),
			PlacedOn:       formatDate(o.CreatedAt, dateLayout),
			TrackingNumber: stringOr(o.TrackingNumber, "N/A"),
		})
	}

	return OrderList{
		Found:       true,
		TotalOrders: len(summaries),
		Orders:      summaries,
	}
}

func itemsOrEmpty(items []state.OrderItem) []state.OrderItem {
	if items == nil {
		return []state.OrderItem{}
	}
	return items
}
