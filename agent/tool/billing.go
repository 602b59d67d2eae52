package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/tanpawarit/ai-support-router/agent/state"
)

var (
	getInvoiceDetailsInfo = &schema.ToolInfo{
		Name: ToolGetInvoiceDetails,
		Desc: "Fetch details of a payment or invoice by payment number or order number. Use when customer asks about charges, receipts, or invoices.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"identifier": {Type: schema.String, Desc: "Payment number (PAY-001), order number (ORD-001), or payment ID", Required: true},
		}),
	}
	checkRefundStatusInfo = &schema.ToolInfo{
		Name: ToolCheckRefundStatus,
		Desc: "Check the status of a refund request. Use when customer asks about their refund.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"identifier": {Type: schema.String, Desc: "Payment number, order number, or payment ID to check refund for", Required: true},
		}),
	}
	listUserPaymentsInfo = &schema.ToolInfo{
		Name: ToolListUserPayments,
		Desc: "List all payments and transactions for the current user. Use when customer asks about billing history or charges.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"userId": {Type: schema.String, Desc: "The user ID to fetch payments for", Required: true},
		}),
	}
)

type InvoiceView struct {
	PaymentNumber string             `json:"paymentNumber"`
	Amount        string             `json:"amount"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"paymentMethod"`
	Date          string             `json:"date"`
	InvoiceURL    *string            `json:"invoiceUrl"`
	RefundStatus  state.RefundStatus `json:"refundStatus"`
}

type InvoiceDetails struct {
	Found   bool        `json:"found"`
	Invoice InvoiceView `json:"invoice"`
}

type RefundStatus struct {
	Found          bool               `json:"found"`
	PaymentNumber  string             `json:"paymentNumber"`
	OriginalAmount string             `json:"originalAmount"`
	RefundStatus   state.RefundStatus `json:"refundStatus"`
	RefundAmount   *string            `json:"refundAmount"`
	RefundReason   *string            `json:"refundReason"`
	StatusMessage  string             `json:"statusMessage"`
	PaymentMethod  string             `json:"paymentMethod"`
}

type PaymentSummary struct {
	PaymentNumber string              `json:"paymentNumber"`
	Amount        string              `json:"amount"`
	Status        string              `json:"status"`
	Method        string              `json:"method"`
	Date          string              `json:"date"`
	InvoiceURL    string              `json:"invoiceUrl"`
	RefundStatus  *state.RefundStatus `json:"refundStatus"`
}

type PaymentList struct {
	Found             bool             `json:"found"`
	TotalTransactions int              `json:"totalTransactions"`
	TotalSpent        string           `json:"totalSpent"`
	Payments          []PaymentSummary `json:"payments"`
}

// resolvePayment finds a payment by its own identifiers and then through the
// order number it was paid for.
func (c *Catalog) resolvePayment(ctx context.Context, identifier string, matchOrderID bool) (*state.Payment, error) {
	payment, err := c.store.FindPayment(ctx, identifier, matchOrderID)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, state.ErrRecordNotFound) {
		return nil, err
	}

	order, err := c.store.FindOrder(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return c.store.FindPaymentByOrder(ctx, order.ID)
}

func (c *Catalog) getInvoiceDetails(ctx context.Context, args map[string]any) any {
	identifier, err := requiredString(args, "identifier")
	if err != nil {
		return invalidArgs(err)
	}

	payment, err := c.resolvePayment(ctx, identifier, true)
	if errors.Is(err, state.ErrRecordNotFound) {
		return notFound("No invoice found for %q. Please check the order or payment number.", identifier)
	}
	if err != nil {
		return lookupFailed(ToolGetInvoiceDetails, err, "Failed to retrieve invoice details.")
	}

	return InvoiceDetails{
		Found: true,
		Invoice: InvoiceView{
			PaymentNumber: payment.PaymentNumber,
			Amount:        moneyWithCurrency(payment.Amount, payment.Currency),
			Status:        payment.Status,
			PaymentMethod: payment.Method,
			Date:          formatDate(payment.CreatedAt, longDateLayout),
			InvoiceURL:    payment.InvoiceURL,
			RefundStatus:  payment.RefundStatus,
		},
	}
}

func (c *Catalog) checkRefundStatus(ctx context.Context, args map[string]any) any {
	identifier, err := requiredString(args, "identifier")
	if err != nil {
		return invalidArgs(err)
	}

	payment, err := c.resolvePayment(ctx, identifier, false)
	if errors.Is(err, state.ErrRecordNotFound) {
		return notFound("No payment found for %q.", identifier)
	}
	if err != nil {
		return lookupFailed(ToolCheckRefundStatus, err, "Failed to retrieve refund status.")
	}

	var refundAmount *string
	if payment.RefundAmount != nil {
		s := money(*payment.RefundAmount)
		refundAmount = &s
	}
	var refundReason *string
	if payment.RefundReason != nil && *payment.RefundReason != "" {
		refundReason = payment.RefundReason
	}

	return RefundStatus{
		Found:          true,
		PaymentNumber:  payment.PaymentNumber,
		OriginalAmount: moneyWithCurrency(payment.Amount, payment.Currency),
		RefundStatus:   payment.RefundStatus,
		RefundAmount:   refundAmount,
		RefundReason:   refundReason,
		StatusMessage:  refundMessage(payment),
		PaymentMethod:  payment.Method,
	}
}

func refundMessage(p *state.Payment) string {
	switch p.RefundStatus {
	case state.RefundNone:
		return "No refund has been requested for this payment."
	case state.RefundRequested:
		return "Your refund request has been received and is awaiting review. This typically takes 1-2 business days."
	case state.RefundProcessing:
		return "Your refund is being processed. Funds will be returned within 3-5 business days."
	case state.RefundCompleted:
		amount := p.Amount
		if p.RefundAmount != nil && *p.RefundAmount != 0 {
			amount = *p.RefundAmount
		}
		return fmt.Sprintf("Your refund of %s has been completed. It may take 5-10 business days to appear in your account depending on your bank.", money(amount))
	default:
		return "Unknown refund status."
	}
}

func (c *Catalog) listUserPayments(ctx context.Context, args map[string]any) any {
	userID, err := requiredString(args, "userId")
	if err != nil {
		return invalidArgs(err)
	}

	payments, err := c.store.ListPayments(ctx, userID)
	if err != nil {
		return lookupFailed(ToolListUserPayments, err, "Failed to retrieve payment history.")
	}
	if len(payments) == 0 {
		return notFound("No payment history found for this account.")
	}

	var totalSpent float64
	summaries := make([]PaymentSummary, 0, len(payments))
	for _, p := range payments {
		if p.Status == "completed" {
			totalSpent += p.Amount
		}

		var refund *state.RefundStatus
		if p.RefundStatus != "" && p.RefundStatus != state.RefundNone {
			rs := p.RefundStatus
			refund = &rs
		}

		summaries = append(summaries, PaymentSummary{
			PaymentNumber: p.PaymentNumber,
			Amount:        moneyWithCurrency(p.Amount, p.Currency),
			Status:        p.Status,
			Method:        p.Method,
			Date:          formatDate(p.CreatedAt, shortDateLayout),
			InvoiceURL:    stringOr(p.InvoiceURL, "N/A"),
			RefundStatus:  refund,
		})
	}

	return PaymentList{
		Found:             true,
		TotalTransactions: len(summaries),
		TotalSpent:        money(totalSpent),
		Payments:          summaries,
	}
}
