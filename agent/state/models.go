package state

import (
	"time"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	"github.com/uptrace/bun"
)

// Conversation owns an append-only sequence of messages. Deleting it
// cascades to its messages through the foreign key created by Migrate.
type Conversation struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID        string     `bun:"id,pk,type:uuid" json:"id"`
	UserID    string     `bun:"user_id,notnull" json:"userId"`
	Title     *string    `bun:"title" json:"title"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
	Messages  []*Message `bun:"rel:has-many,join:id=conversation_id" json:"messages,omitempty"`
}

func (c *Conversation) HasTitle() bool {
	return c != nil && c.Title != nil && *c.Title != ""
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             string               `bun:"id,pk,type:uuid" json:"id"`
	ConversationID string               `bun:"conversation_id,notnull,type:uuid" json:"conversationId"`
	Role           contractx.Role       `bun:"role,notnull" json:"role"`
	Content        string               `bun:"content,notnull" json:"content"`
	AgentType      *contractx.AgentType `bun:"agent_type" json:"agentType"`
	RoutingReason  *string              `bun:"routing_reason" json:"routingReason"`
	ToolsUsed      []string             `bun:"tools_used,array" json:"toolsUsed"`
	CreatedAt      time.Time            `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID                string      `bun:"id,pk,type:uuid"`
	OrderNumber       string      `bun:"order_number,notnull,unique"`
	UserID            string      `bun:"user_id,notnull"`
	Status            OrderStatus `bun:"status,notnull"`
	TrackingNumber    *string     `bun:"tracking_number"`
	TotalAmount       float64     `bun:"total_amount,notnull"`
	Currency          string      `bun:"currency,notnull,default:'USD'"`
	Items             []OrderItem `bun:"items,type:jsonb"`
	ShippingAddress   *string     `bun:"shipping_address"`
	EstimatedDelivery *time.Time  `bun:"estimated_delivery"`
	DeliveredAt       *time.Time  `bun:"delivered_at"`
	CreatedAt         time.Time   `bun:"created_at,notnull,default:current_timestamp"`
}

type RefundStatus string

const (
	RefundNone       RefundStatus = "none"
	RefundRequested  RefundStatus = "requested"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID            string       `bun:"id,pk,type:uuid"`
	PaymentNumber string       `bun:"payment_number,notnull,unique"`
	UserID        string       `bun:"user_id,notnull"`
	OrderID       *string      `bun:"order_id,type:uuid"`
	Amount        float64      `bun:"amount,notnull"`
	Currency      string       `bun:"currency,notnull,default:'USD'"`
	Status        string       `bun:"status,notnull"`
	Method        string       `bun:"method,notnull"`
	InvoiceURL    *string      `bun:"invoice_url"`
	RefundStatus  RefundStatus `bun:"refund_status,notnull,default:'none'"`
	RefundAmount  *float64     `bun:"refund_amount"`
	RefundReason  *string      `bun:"refund_reason"`
	CreatedAt     time.Time    `bun:"created_at,notnull,default:current_timestamp"`
}

type FAQ struct {
	bun.BaseModel `bun:"table:faqs,alias:f"`

	ID       string   `bun:"id,pk,type:uuid"`
	Category string   `bun:"category,notnull"`
	Question string   `bun:"question,notnull"`
	Answer   string   `bun:"answer,notnull"`
	Tags     []string `bun:"tags,array"`
}
