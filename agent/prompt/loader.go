package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/order.txt
	orderRaw string

	//go:embed template/billing.txt
	billingRaw string

	//go:embed template/support.txt
	supportRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router  string
	Order   string
	Billing string
	Support string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:  strings.TrimSpace(routerRaw),
		Order:   strings.TrimSpace(orderRaw),
		Billing: strings.TrimSpace(billingRaw),
		Support: strings.TrimSpace(supportRaw),
	}
}

// For returns the system prompt of agentType.
func (p PromptSet) For(agentType contractx.AgentType) (string, error) {
	var text string
	switch agentType {
	case contractx.AgentTypeRouter:
		text = p.Router
	case contractx.AgentTypeOrder:
		text = p.Order
	case contractx.AgentTypeBilling:
		text = p.Billing
	case contractx.AgentTypeSupport:
		text = p.Support
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, agentType)
	}
	return text, nil
}
