package tool

import (
	"context"
	"testing"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

func TestBuildForAgentBindsThreeToolsEach(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(demoLookup())
	want := map[contractx.AgentType][]string{
		contractx.AgentTypeOrder:   {ToolGetOrderDetails, ToolCheckDeliveryStatus, ToolListUserOrders},
		contractx.AgentTypeBilling: {ToolGetInvoiceDetails, ToolCheckRefundStatus, ToolListUserPayments},
		contractx.AgentTypeSupport: {ToolSearchFAQ, ToolGetConversationContext, ToolGetSupportCategories},
	}

	for agentType, names := range want {
		infos, executor := catalog.BuildForAgent(agentType)
		if executor == nil {
			t.Fatalf("%s: executor must not be nil", agentType)
		}
		if len(infos) != len(names) {
			t.Fatalf("%s: expected %d tool infos, got %d", agentType, len(names), len(infos))
		}
		for i, name := range names {
			if infos[i].Name != name {
				t.Fatalf("%s: tool[%d] = %s, want %s", agentType, i, infos[i].Name, name)
			}
		}
	}
}

func TestBuildForAgentRouterHasNoTools(t *testing.T) {
	t.Parallel()

	infos, _ := NewCatalog(demoLookup()).BuildForAgent(contractx.AgentTypeRouter)
	if len(infos) != 0 {
		t.Fatalf("expected no tools for router, got %d", len(infos))
	}
}

func TestExecutorRejectsToolOfAnotherAgent(t *testing.T) {
	t.Parallel()

	_, executor := NewCatalog(demoLookup()).BuildForAgent(contractx.AgentTypeOrder)
	out, err := executor(context.Background(), ToolSearchFAQ, map[string]any{"query": "shipping"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tool != ToolSearchFAQ {
		t.Fatalf("unexpected tool: %s", out.Tool)
	}
	nf, ok := out.Result.(NotFound)
	if !ok || nf.Found || nf.Message == "" {
		t.Fatalf("unexpected result: %#v", out.Result)
	}
}

func TestExecutorToleratesNilArgs(t *testing.T) {
	t.Parallel()

	_, executor := NewCatalog(demoLookup()).BuildForAgent(contractx.AgentTypeSupport)
	out, err := executor(context.Background(), ToolGetSupportCategories, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := out.Result.(SupportCategories)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if !result.Found || len(result.Categories) != 5 {
		t.Fatalf("unexpected categories: %#v", result)
	}
}
