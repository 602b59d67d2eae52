package state

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	"github.com/uptrace/bun"
)

const DemoUserID = "user_demo"

const demoAddress = "123 Main St, San Francisco, CA 94105"

// Seed wipes every table and loads the demo dataset.
func Seed(ctx context.Context, db *bun.DB, opts ...StoreOption) error {
	store, err := NewBunStore(db, opts...)
	if err != nil {
		return err
	}
	now := store.now().UTC()
	day := 24 * time.Hour

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []any{(*Message)(nil), (*Conversation)(nil), (*Payment)(nil), (*Order)(nil), (*FAQ)(nil)} {
			if _, err := tx.NewDelete().Model(model).Where("TRUE").Exec(ctx); err != nil {
				return fmt.Errorf("clear table: %w", err)
			}
		}

		orders := demoOrders(now, day, store.newID)
		if _, err := tx.NewInsert().Model(&orders).Exec(ctx); err != nil {
			return fmt.Errorf("insert orders: %w", err)
		}

		payments := demoPayments(now, orders, store.newID)
		if _, err := tx.NewInsert().Model(&payments).Exec(ctx); err != nil {
			return fmt.Errorf("insert payments: %w", err)
		}

		faqs := demoFAQs(store.newID)
		if _, err := tx.NewInsert().Model(&faqs).Exec(ctx); err != nil {
			return fmt.Errorf("insert faqs: %w", err)
		}

		title := "Order Status Inquiry"
		conv := &Conversation{
			ID:        store.newID(),
			UserID:    DemoUserID,
			Title:     &title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.NewInsert().Model(conv).Exec(ctx); err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}

		agent := contractx.AgentTypeOrder
		reason := "Query references order number"
		messages := []*Message{
			{
				ID:             store.newID(),
				ConversationID: conv.ID,
				Role:           contractx.RoleUser,
				Content:        "Where is my order ORD-001?",
				ToolsUsed:      []string{},
				CreatedAt:      now,
			},
			{
				ID:             store.newID(),
				ConversationID: conv.ID,
				Role:           contractx.RoleAssistant,
				Content:        "Your order ORD-001 has been shipped! Tracking number: TRK-9876543210. Estimated delivery in 2 days.",
				AgentType:      &agent,
				RoutingReason:  &reason,
				ToolsUsed:      []string{},
				CreatedAt:      now.Add(time.Second),
			},
		}
		if _, err := tx.NewInsert().Model(&messages).Exec(ctx); err != nil {
			return fmt.Errorf("insert messages: %w", err)
		}

		log.Info().
			Int("orders", len(orders)).
			Int("payments", len(payments)).
			Int("faqs", len(faqs)).
			Str("user_id", DemoUserID).
			Msg("database seeded")
		return nil
	})
}

func demoOrders(now time.Time, day time.Duration, newID func() string) []*Order {
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	str := func(s string) *string { return &s }
	address := demoAddress

	return []*Order{
		{
			ID:             newID(),
			OrderNumber:    "ORD-001",
			UserID:         DemoUserID,
			Status:         OrderShipped,
			TrackingNumber: str("TRK-9876543210"),
			TotalAmount:    299.99,
			Currency:       "USD",
			Items: []OrderItem{
				{Name: "Wireless Noise-Canceling Headphones", Quantity: 1, Price: 249.99},
				{Name: "USB-C Cable Pack", Quantity: 2, Price: 24.99},
			},
			ShippingAddress:   &address,
			EstimatedDelivery: at(2 * day),
			CreatedAt:         now.Add(-4 * day),
		},
		{
			ID:                newID(),
			OrderNumber:       "ORD-002",
			UserID:            DemoUserID,
			Status:            OrderDelivered,
			TrackingNumber:    str("TRK-1234567890"),
			TotalAmount:       89.50,
			Currency:          "USD",
			Items:             []OrderItem{{Name: "Mechanical Keyboard", Quantity: 1, Price: 89.50}},
			ShippingAddress:   &address,
			EstimatedDelivery: at(-5 * day),
			DeliveredAt:       at(-3 * day),
			CreatedAt:         now.Add(-10 * day),
		},
		{
			ID:          newID(),
			OrderNumber: "ORD-003",
			UserID:      DemoUserID,
			Status:      OrderPending,
			TotalAmount: 49.99,
			Currency:    "USD",
			Items: []OrderItem{
				{Name: "Phone Case", Quantity: 1, Price: 29.99},
				{Name: "Screen Protector Pack", Quantity: 1, Price: 19.99},
			},
			ShippingAddress:   &address,
			EstimatedDelivery: at(7 * day),
			CreatedAt:         now.Add(-day),
		},
		{
			ID:              newID(),
			OrderNumber:     "ORD-004",
			UserID:          DemoUserID,
			Status:          OrderCancelled,
			TotalAmount:     150.00,
			Currency:        "USD",
			Items:           []OrderItem{{Name: "Smart Watch", Quantity: 1, Price: 150.00}},
			ShippingAddress: &address,
			CreatedAt:       now.Add(-20 * day),
		},
	}
}

func demoPayments(now time.Time, orders []*Order, newID func() string) []*Payment {
	str := func(s string) *string { return &s }
	invoice := func(number string) *string {
		return str("https://example.com/invoices/" + number + ".pdf")
	}
	refunded := 150.00

	return []*Payment{
		{
			ID:            newID(),
			PaymentNumber: "PAY-001",
			UserID:        DemoUserID,
			OrderID:       &orders[0].ID,
			Amount:        299.99,
			Currency:      "USD",
			Status:        "completed",
			Method:        "credit_card",
			InvoiceURL:    invoice("PAY-001"),
			RefundStatus:  RefundNone,
			CreatedAt:     orders[0].CreatedAt,
		},
		{
			ID:            newID(),
			PaymentNumber: "PAY-002",
			UserID:        DemoUserID,
			OrderID:       &orders[1].ID,
			Amount:        89.50,
			Currency:      "USD",
			Status:        "completed",
			Method:        "paypal",
			InvoiceURL:    invoice("PAY-002"),
			RefundStatus:  RefundNone,
			CreatedAt:     orders[1].CreatedAt,
		},
		{
			ID:            newID(),
			PaymentNumber: "PAY-003",
			UserID:        DemoUserID,
			OrderID:       &orders[2].ID,
			Amount:        49.99,
			Currency:      "USD",
			Status:        "pending",
			Method:        "credit_card",
			RefundStatus:  RefundNone,
			CreatedAt:     orders[2].CreatedAt,
		},
		{
			ID:            newID(),
			PaymentNumber: "PAY-004",
			UserID:        DemoUserID,
			OrderID:       &orders[3].ID,
			Amount:        150.00,
			Currency:      "USD",
			Status:        "refunded",
			Method:        "credit_card",
			InvoiceURL:    invoice("PAY-004"),
			RefundStatus:  RefundCompleted,
			RefundAmount:  &refunded,
			RefundReason:  str("Order cancelled by customer"),
			CreatedAt:     orders[3].CreatedAt,
		},
		{
			ID:            newID(),
			PaymentNumber: "PAY-SUB-001",
			UserID:        DemoUserID,
			Amount:        19.99,
			Currency:      "USD",
			Status:        "completed",
			Method:        "credit_card",
			InvoiceURL:    invoice("PAY-SUB-001"),
			RefundStatus:  RefundNone,
			CreatedAt:     now.Add(-2 * 24 * time.Hour),
		},
	}
}

func demoFAQs(newID func() string) []*FAQ {
	return []*FAQ{
		{
			ID:       newID(),
			Category: "shipping",
			Question: "How long does standard shipping take?",
			Answer:   "Standard shipping typically takes 5-7 business days. Express shipping is available for 2-3 business days, and overnight shipping for next-day delivery.",
			Tags:     []string{"shipping", "delivery", "time"},
		},
		{
			ID:       newID(),
			Category: "returns",
			Question: "What is your return policy?",
			Answer:   "We offer a 30-day return policy for all items. Products must be in original condition and packaging. To initiate a return, contact our support team with your order number.",
			Tags:     []string{"returns", "refund", "policy"},
		},
		{
			ID:       newID(),
			Category: "account",
			Question: "How do I reset my password?",
			Answer:   `To reset your password, click "Forgot Password" on the login page, enter your email address, and follow the instructions in the reset email. The link expires after 24 hours.`,
			Tags:     []string{"password", "account", "login", "reset"},
		},
		{
			ID:       newID(),
			Category: "product",
			Question: "Do your electronics come with a warranty?",
			Answer:   "Yes! All electronics come with a 1-year manufacturer warranty. We also offer extended warranty plans for 2 or 3 years at checkout.",
			Tags:     []string{"warranty", "electronics", "product"},
		},
		{
			ID:       newID(),
			Category: "shipping",
			Question: "Do you offer international shipping?",
			Answer:   "Yes, we ship to over 50 countries. International shipping takes 10-21 business days. Import duties and taxes may apply.",
			Tags:     []string{"international", "shipping", "global"},
		},
		{
			ID:       newID(),
			Category: "returns",
			Question: "How do I track my refund?",
			Answer:   "Once your return is received and inspected, refunds are processed within 3-5 business days. Funds will appear in your account within 5-10 business days depending on your bank.",
			Tags:     []string{"refund", "return", "tracking"},
		},
	}
}
