package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	llmx "github.com/tanpawarit/ai-support-router/agent/llm"
	promptx "github.com/tanpawarit/ai-support-router/agent/prompt"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
	toolx "github.com/tanpawarit/ai-support-router/agent/tool"
)

const (
	lookupRoundCap  = 5
	supportRoundCap = 4
)

// Models carries one chat model per agent.
type Models struct {
	Router  einomodel.BaseChatModel
	Order   einomodel.ToolCallingChatModel
	Billing einomodel.ToolCallingChatModel
	Support einomodel.ToolCallingChatModel
}

type registryImpl struct {
	classifier contractx.Classifier
	responders map[contractx.AgentType]contractx.Responder
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Responder(agentType contractx.AgentType) (contractx.Responder, bool) {
	resp, ok := r.responders[agentType]
	return resp, ok
}

// NewRegistry creates the provider models from cfg and builds the registry.
func NewRegistry(ctx context.Context, cfg llmx.Config, lookup statex.LookupStore) (contractx.Registry, error) {
	var models Models
	for _, agentType := range []contractx.AgentType{
		contractx.AgentTypeRouter,
		contractx.AgentTypeOrder,
		contractx.AgentTypeBilling,
		contractx.AgentTypeSupport,
	} {
		modelCfg := cfg.OpenRouterFor(agentType)
		m, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		switch agentType {
		case contractx.AgentTypeRouter:
			models.Router = m
		case contractx.AgentTypeOrder:
			models.Order = m
		case contractx.AgentTypeBilling:
			models.Billing = m
		case contractx.AgentTypeSupport:
			models.Support = m
		}
	}
	return Build(ctx, models, lookup)
}

func Build(ctx context.Context, models Models, lookup statex.LookupStore) (contractx.Registry, error) {
	if models.Router == nil {
		return nil, fmt.Errorf("%w: router model is required", contractx.ErrValidation)
	}
	if lookup == nil {
		return nil, fmt.Errorf("%w: lookup store is required", contractx.ErrValidation)
	}

	prompts := promptx.LoadPromptSet()
	routerPrompt, err := prompts.For(contractx.AgentTypeRouter)
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(ctx, models.Router, routerPrompt)
	if err != nil {
		return nil, err
	}

	catalog := toolx.NewCatalog(lookup)
	userLabel := func(req contractx.SpecialistRequest) string {
		return "Current user ID: " + req.UserID
	}
	conversationLabel := func(req contractx.SpecialistRequest) string {
		return "Conversation ID: " + req.ConversationID
	}

	specs := []struct {
		agentType contractx.AgentType
		model     einomodel.ToolCallingChatModel
		roundCap  int
		label     func(contractx.SpecialistRequest) string
	}{
		{contractx.AgentTypeOrder, models.Order, lookupRoundCap, userLabel},
		{contractx.AgentTypeBilling, models.Billing, lookupRoundCap, userLabel},
		{contractx.AgentTypeSupport, models.Support, supportRoundCap, conversationLabel},
	}

	responders := make(map[contractx.AgentType]contractx.Responder, len(specs))
	for _, s := range specs {
		systemPrompt, err := prompts.For(s.agentType)
		if err != nil {
			return nil, err
		}
		tools, executor := catalog.BuildForAgent(s.agentType)
		resp, err := NewResponder(s.model, Profile{
			AgentType:    s.agentType,
			SystemPrompt: systemPrompt,
			Tools:        tools,
			Executor:     executor,
			RoundCap:     s.roundCap,
			ContextLabel: s.label,
		})
		if err != nil {
			return nil, err
		}
		responders[s.agentType] = resp
	}

	return &registryImpl{
		classifier: classifier,
		responders: responders,
	}, nil
}
