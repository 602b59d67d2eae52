package tool

import (
	"context"
	"strings"
	"time"

	"github.com/tanpawarit/ai-support-router/agent/state"
)

type fakeLookup struct {
	orders   []*state.Order
	payments []*state.Payment
	faqs     []*state.FAQ
	messages []*state.Message
	err      error

	lastFAQQuery    state.FAQQuery
	lastOrderStatus state.OrderStatus
	lastLimit       int
}

var _ state.LookupStore = (*fakeLookup)(nil)

func (f *fakeLookup) FindOrder(_ context.Context, identifier string) (*state.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.orders {
		if o.OrderNumber == identifier || o.ID == identifier {
			return o, nil
		}
	}
	return nil, state.ErrRecordNotFound
}

func (f *fakeLookup) FindOrderByTracking(_ context.Context, trackingNumber string) (*state.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.orders {
		if o.TrackingNumber != nil && *o.TrackingNumber == trackingNumber {
			return o, nil
		}
	}
	return nil, state.ErrRecordNotFound
}

func (f *fakeLookup) ListOrders(_ context.Context, userID string, status state.OrderStatus) ([]*state.Order, error) {
	f.lastOrderStatus = status
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*state.Order, 0)
	for _, o := range f.orders {
		if o.UserID == userID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeLookup) FindPayment(_ context.Context, identifier string, matchOrderID bool) (*state.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.payments {
		if p.PaymentNumber == identifier || p.ID == identifier {
			return p, nil
		}
		if matchOrderID && p.OrderID != nil && *p.OrderID == identifier {
			return p, nil
		}
	}
	return nil, state.ErrRecordNotFound
}

func (f *fakeLookup) FindPaymentByOrder(_ context.Context, orderID string) (*state.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.payments {
		if p.OrderID != nil && *p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, state.ErrRecordNotFound
}

func (f *fakeLookup) ListPayments(_ context.Context, userID string) ([]*state.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*state.Payment, 0)
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLookup) SearchFAQ(_ context.Context, query state.FAQQuery) ([]*state.FAQ, error) {
	f.lastFAQQuery = query
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*state.FAQ, 0)
	for _, faq := range f.faqs {
		if query.Category != "" && faq.Category != query.Category {
			continue
		}
		if faqMatches(faq, query) {
			out = append(out, faq)
		}
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

func faqMatches(faq *state.FAQ, query state.FAQQuery) bool {
	if strings.Contains(strings.ToLower(faq.Question), query.Text) ||
		strings.Contains(strings.ToLower(faq.Answer), query.Text) {
		return true
	}
	for _, tag := range faq.Tags {
		for _, w := range query.Words {
			if tag == w {
				return true
			}
		}
	}
	return false
}

func (f *fakeLookup) RecentMessages(_ context.Context, conversationID string, limit int) ([]*state.Message, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*state.Message, 0)
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

var fixedTime = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

func demoLookup() *fakeLookup {
	orderA := &state.Order{
		ID:                "11111111-1111-1111-1111-111111111111",
		OrderNumber:       "ORD-001",
		UserID:            "user_demo",
		Status:            state.OrderShipped,
		TrackingNumber:    ptr("TRK-9876543210"),
		TotalAmount:       299.99,
		Currency:          "USD",
		Items:             []state.OrderItem{{Name: "Headphones", Quantity: 1, Price: 249.99}, {Name: "Cable", Quantity: 2, Price: 24.99}},
		ShippingAddress:   ptr("123 Main St"),
		EstimatedDelivery: ptr(fixedTime.Add(48 * time.Hour)),
		CreatedAt:         fixedTime,
	}
	orderB := &state.Order{
		ID:          "22222222-2222-2222-2222-222222222222",
		OrderNumber: "ORD-004",
		UserID:      "user_demo",
		Status:      state.OrderCancelled,
		TotalAmount: 150,
		Currency:    "USD",
		Items:       []state.OrderItem{{Name: "Smart Watch", Quantity: 1, Price: 150}},
		CreatedAt:   fixedTime.Add(-24 * time.Hour),
	}
	return &fakeLookup{
		orders: []*state.Order{orderA, orderB},
		payments: []*state.Payment{
			{
				ID:            "33333333-3333-3333-3333-333333333333",
				PaymentNumber: "PAY-001",
				UserID:        "user_demo",
				OrderID:       &orderA.ID,
				Amount:        299.99,
				Currency:      "USD",
				Status:        "completed",
				Method:        "credit_card",
				InvoiceURL:    ptr("https://example.com/invoices/PAY-001.pdf"),
				RefundStatus:  state.RefundNone,
				CreatedAt:     fixedTime,
			},
			{
				ID:            "44444444-4444-4444-4444-444444444444",
				PaymentNumber: "PAY-004",
				UserID:        "user_demo",
				OrderID:       &orderB.ID,
				Amount:        150,
				Currency:      "USD",
				Status:        "refunded",
				Method:        "credit_card",
				RefundStatus:  state.RefundCompleted,
				RefundAmount:  ptr(120.0),
				RefundReason:  ptr("Order cancelled by customer"),
				CreatedAt:     fixedTime,
			},
			{
				ID:            "55555555-5555-5555-5555-555555555555",
				PaymentNumber: "PAY-SUB-001",
				UserID:        "user_demo",
				Amount:        19.99,
				Currency:      "USD",
				Status:        "completed",
				Method:        "credit_card",
				RefundStatus:  state.RefundNone,
				CreatedAt:     fixedTime,
			},
		},
		faqs: []*state.FAQ{
			{Category: "shipping", Question: "How long does standard shipping take?", Answer: "5-7 business days.", Tags: []string{"shipping", "delivery", "time"}},
			{Category: "returns", Question: "What is your return policy?", Answer: "30 days.", Tags: []string{"returns", "refund", "policy"}},
		},
	}
}
