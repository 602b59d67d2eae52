package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	toolx "github.com/tanpawarit/ai-support-router/agent/tool"
)

type AgentInfo struct {
	Type        contractx.AgentType `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	IsActive    bool                `json:"isActive"`
}

type AgentCapability struct {
	Type        contractx.AgentType `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Tools       []string            `json:"tools"`
	Examples    []string            `json:"examples"`
}

var agentCatalog = []AgentInfo{
	{
		Type:        contractx.AgentTypeSupport,
		Name:        "Support Agent",
		Description: "Handles general inquiries, FAQs, and troubleshooting",
		IsActive:    true,
	},
	{
		Type:        contractx.AgentTypeOrder,
		Name:        "Order Agent",
		Description: "Specializes in order status, tracking, and order management",
		IsActive:    true,
	},
	{
		Type:        contractx.AgentTypeBilling,
		Name:        "Billing Agent",
		Description: "Handles payments, invoices, refunds, and subscription queries",
		IsActive:    true,
	},
}

var agentCapabilities = map[contractx.AgentType]AgentCapability{
	contractx.AgentTypeSupport: {
		Type:        contractx.AgentTypeSupport,
		Name:        "Support Agent",
		Description: "General customer support specialist with access to knowledge base",
		Tools:       []string{toolx.ToolSearchFAQ, toolx.ToolGetConversationContext, toolx.ToolGetSupportCategories},
		Examples: []string{
			"How do I return a product?",
			"What is your shipping policy?",
			"How do I reset my password?",
			"Do you offer international shipping?",
		},
	},
	contractx.AgentTypeOrder: {
		Type:        contractx.AgentTypeOrder,
		Name:        "Order Agent",
		Description: "Order management specialist with live database access",
		Tools:       []string{toolx.ToolGetOrderDetails, toolx.ToolCheckDeliveryStatus, toolx.ToolListUserOrders},
		Examples: []string{
			"Where is my order ORD-001?",
			"What's the status of tracking number TRK-9876543210?",
			"Show me all my orders",
			"Has my order been shipped?",
		},
	},
	contractx.AgentTypeBilling: {
		Type:        contractx.AgentTypeBilling,
		Name:        "Billing Agent",
		Description: "Billing and payments specialist with invoice access",
		Tools:       []string{toolx.ToolGetInvoiceDetails, toolx.ToolCheckRefundStatus, toolx.ToolListUserPayments},
		Examples: []string{
			"I need an invoice for my last purchase",
			"What's the status of my refund?",
			"Show me my payment history",
			"I was charged incorrectly",
		},
	},
}

func (h *Handler) listAgents(c *gin.Context) {
	c.JSON(http.StatusOK, success(agentCatalog))
}

func (h *Handler) agentCapabilities(c *gin.Context) {
	agentType := c.Param("type")
	capability, ok := agentCapabilities[contractx.AgentType(agentType)]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody{
			Success: false,
			Error:   fmt.Sprintf("Agent type %q not found", agentType),
			Code:    CodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, success(capability))
}
