package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// LookupStore is the read-only surface the lookup tools query.
type LookupStore interface {
	FindOrder(ctx context.Context, identifier string) (*Order, error)
	FindOrderByTracking(ctx context.Context, trackingNumber string) (*Order, error)
	ListOrders(ctx context.Context, userID string, status OrderStatus) ([]*Order, error)
	FindPayment(ctx context.Context, identifier string, matchOrderID bool) (*Payment, error)
	FindPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)
	ListPayments(ctx context.Context, userID string) ([]*Payment, error)
	SearchFAQ(ctx context.Context, query FAQQuery) ([]*FAQ, error)
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error)
}

type FAQQuery struct {
	// Text is matched as a substring of question or answer.
	Text string
	// Words are matched against the tag array.
	Words    []string
	Category string
	Limit    int
}

func (s *BunStore) FindOrder(ctx context.Context, identifier string) (*Order, error) {
	order := new(Order)
	q := s.db.NewSelect().Model(order).Where("order_number = ?", identifier)
	if isUUID(identifier) {
		q = q.WhereOr("id = ?", identifier)
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err, "select order")
	}
	return order, nil
}

func (s *BunStore) FindOrderByTracking(ctx context.Context, trackingNumber string) (*Order, error) {
	order := new(Order)
	err := s.db.NewSelect().
		Model(order).
		Where("tracking_number = ?", trackingNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "select order by tracking number")
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first. An empty status
// disables the status filter.
func (s *BunStore) ListOrders(ctx context.Context, userID string, status OrderStatus) ([]*Order, error) {
	orders := make([]*Order, 0)
	if err := s.listOrdersQuery(userID, status, &orders).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	return orders, nil
}

func (s *BunStore) listOrdersQuery(userID string, status OrderStatus, dst *[]*Order) *bun.SelectQuery {
	q := s.db.NewSelect().
		Model(dst).
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q.Order("created_at DESC")
}

// FindPayment matches by payment number or id, and by order id when
// matchOrderID is set.
func (s *BunStore) FindPayment(ctx context.Context, identifier string, matchOrderID bool) (*Payment, error) {
	payment := new(Payment)
	q := s.db.NewSelect().Model(payment).Where("payment_number = ?", identifier)
	if isUUID(identifier) {
		q = q.WhereOr("id = ?", identifier)
		if matchOrderID {
			q = q.WhereOr("order_id = ?", identifier)
		}
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err, "select payment")
	}
	return payment, nil
}

func (s *BunStore) FindPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	payment := new(Payment)
	err := s.db.NewSelect().
		Model(payment).
		Where("order_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "select payment by order")
	}
	return payment, nil
}

func (s *BunStore) ListPayments(ctx context.Context, userID string) ([]*Payment, error) {
	payments := make([]*Payment, 0)
	err := s.db.NewSelect().
		Model(&payments).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	return payments, nil
}

func (s *BunStore) SearchFAQ(ctx context.Context, query FAQQuery) ([]*FAQ, error) {
	faqs := make([]*FAQ, 0)
	if err := s.searchFAQQuery(query, &faqs).Scan(ctx); err != nil {
		return nil, fmt.Errorf("search faqs: %w", err)
	}
	return faqs, nil
}

func (s *BunStore) searchFAQQuery(query FAQQuery, dst *[]*FAQ) *bun.SelectQuery {
	pattern := "%" + escapeLike(query.Text) + "%"

	q := s.db.NewSelect().Model(dst)
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("question ILIKE ?", pattern).WhereOr("answer ILIKE ?", pattern)
		if len(query.Words) > 0 {
			q = q.WhereOr("tags && ?", pgdialect.Array(query.Words))
		}
		return q
	})
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
