package tool

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	"github.com/tanpawarit/ai-support-router/agent/state"
)

const (
	ToolGetOrderDetails        = "getOrderDetails"
	ToolCheckDeliveryStatus    = "checkDeliveryStatus"
	ToolListUserOrders         = "listUserOrders"
	ToolGetInvoiceDetails      = "getInvoiceDetails"
	ToolCheckRefundStatus      = "checkRefundStatus"
	ToolListUserPayments       = "listUserPayments"
	ToolSearchFAQ              = "searchFAQ"
	ToolGetConversationContext = "getConversationContext"
	ToolGetSupportCategories   = "getSupportCategories"
)

// Executor runs one tool call. Lookup failures are reported inside the
// result, so the error is reserved for calls that cannot be dispatched.
type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

type handler func(ctx context.Context, args map[string]any) any

type entry struct {
	info *schema.ToolInfo
	run  handler
}

// Catalog binds the lookup tools to a store.
type Catalog struct {
	store   state.LookupStore
	entries map[contractx.AgentType][]entry
}

func NewCatalog(store state.LookupStore) *Catalog {
	c := &Catalog{store: store}
	c.entries = map[contractx.AgentType][]entry{
		contractx.AgentTypeOrder: {
			{info: getOrderDetailsInfo, run: c.getOrderDetails},
			{info: checkDeliveryStatusInfo, run: c.checkDeliveryStatus},
			{info: listUserOrdersInfo, run: c.listUserOrders},
		},
		contractx.AgentTypeBilling: {
			{info: getInvoiceDetailsInfo, run: c.getInvoiceDetails},
			{info: checkRefundStatusInfo, run: c.checkRefundStatus},
			{info: listUserPaymentsInfo, run: c.listUserPayments},
		},
		contractx.AgentTypeSupport: {
			{info: searchFAQInfo, run: c.searchFAQ},
			{info: getConversationContextInfo, run: c.getConversationContext},
			{info: getSupportCategoriesInfo, run: c.getSupportCategories},
		},
	}
	return c
}

// BuildForAgent returns the tool metadata bound to agentType's model and the
// executor that serves those tools only.
func (c *Catalog) BuildForAgent(agentType contractx.AgentType) ([]*schema.ToolInfo, Executor) {
	entries := c.entries[agentType]
	infos := make([]*schema.ToolInfo, 0, len(entries))
	handlers := make(map[string]handler, len(entries))
	for _, e := range entries {
		infos = append(infos, e.info)
		handlers[e.info.Name] = e.run
	}
	return infos, newExecutor(agentType, handlers)
}

func newExecutor(agentType contractx.AgentType, handlers map[string]handler) Executor {
	fallback := DefaultExecutor(agentType)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		run, ok := handlers[tool]
		if !ok {
			return fallback(ctx, tool, args)
		}
		if args == nil {
			args = map[string]any{}
		}

		log.Debug().
			Str("agent_type", string(agentType)).
			Str("tool", tool).
			Interface("args", args).
			Msg("tool call")

		return contractx.ToolResult{Tool: tool, Result: run(ctx, args)}, nil
	}
}

func DefaultExecutor(agentType contractx.AgentType) Executor {
	return func(_ context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:   tool,
			Result: notFound("tool=%s is unavailable for agent=%s", tool, agentType),
		}, nil
	}
}

// lookupFailed logs err and returns the generic failure result for tool.
func lookupFailed(tool string, err error, message string) NotFound {
	log.Error().Err(err).Str("tool", tool).Msg("lookup failed")
	return NotFound{Found: false, Message: message}
}

func invalidArgs(err error) NotFound {
	return notFound("Invalid arguments: %v", err)
}
