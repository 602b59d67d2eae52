package tool

import (
	"context"
	"slices"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/tanpawarit/ai-support-router/agent/state"
)

const (
	faqResultLimit         = 3
	defaultContextMessages = 10
	maxContextMessages     = 50
)

var faqCategories = []string{"shipping", "returns", "account", "product", "all"}

var (
	searchFAQInfo = &schema.ToolInfo{
		Name: ToolSearchFAQ,
		Desc: "Search the knowledge base for answers to common customer questions.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query":    {Type: schema.String, Desc: "The search query or topic to look up", Required: true},
			"category": {Type: schema.String, Desc: "Optional FAQ category", Enum: faqCategories},
		}),
	}
	getConversationContextInfo = &schema.ToolInfo{
		Name: ToolGetConversationContext,
		Desc: "Retrieve previous messages in this conversation for context.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"conversationId": {Type: schema.String, Desc: "The current conversation ID", Required: true},
			"limit":          {Type: schema.Integer, Desc: "Number of recent messages to get (default 10)"},
		}),
	}
	getSupportCategoriesInfo = &schema.ToolInfo{
		Name:        ToolGetSupportCategories,
		Desc:        "Get a list of available support topics we can help with.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}
)

type SupportCategory struct {
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

var supportCategories = []SupportCategory{
	{Name: "Shipping & Delivery", Topics: []string{"Shipping times", "International shipping", "Tracking"}},
	{Name: "Returns & Refunds", Topics: []string{"Return policy", "How to return", "Refund timeline"}},
	{Name: "Account Management", Topics: []string{"Password reset", "Update info", "Privacy settings"}},
	{Name: "Product Information", Topics: []string{"Warranty", "Compatibility", "Specifications"}},
	{Name: "Order Issues", Topics: []string{"Wrong item", "Damaged package", "Missing items"}},
}

type FAQResult struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQResults struct {
	Found   bool        `json:"found"`
	Results []FAQResult `json:"results"`
}

type ContextMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	AgentType string `json:"agentType"`
}

type ConversationContext struct {
	Found        bool             `json:"found"`
	MessageCount int              `json:"messageCount"`
	Messages     []ContextMessage `json:"messages"`
}

type SupportCategories struct {
	Found      bool              `json:"found"`
	Categories []SupportCategory `json:"categories"`
}

func (c *Catalog) searchFAQ(ctx context.Context, args map[string]any) any {
	query, err := requiredString(args, "query")
	if err != nil {
		return invalidArgs(err)
	}
	category, err := optionalString(args, "category")
	if err != nil {
		return invalidArgs(err)
	}
	if category != "" && !slices.Contains(faqCategories, category) {
		return notFound("Invalid arguments: category must be one of %v", faqCategories)
	}
	if category == "all" {
		category = ""
	}

	lower := strings.ToLower(query)
	faqs, err := c.store.SearchFAQ(ctx, state.FAQQuery{
		Text:     lower,
		Words:    queryWords(lower),
		Category: category,
		Limit:    faqResultLimit,
	})
	if err != nil {
		return lookupFailed(ToolSearchFAQ, err, "Failed to search knowledge base.")
	}
	if len(faqs) == 0 {
		return notFound("No FAQ found for %q. Answering from general knowledge.", query)
	}

	results := make([]FAQResult, 0, len(faqs))
	for _, f := range faqs {
		results = append(results, FAQResult{Category: f.Category, Question: f.Question, Answer: f.Answer})
	}
	return FAQResults{Found: true, Results: results}
}

// queryWords keeps the space-separated words longer than two characters.
func queryWords(lower string) []string {
	words := make([]string, 0)
	for _, w := range strings.Split(lower, " ") {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func (c *Catalog) getConversationContext(ctx context.Context, args map[string]any) any {
	conversationID, err := requiredString(args, "conversationId")
	if err != nil {
		return invalidArgs(err)
	}
	limit, err := optionalInt(args, "limit", defaultContextMessages)
	if err != nil {
		return invalidArgs(err)
	}
	if limit <= 0 {
		limit = defaultContextMessages
	}
	if limit > maxContextMessages {
		limit = maxContextMessages
	}
	if _, err := uuid.Parse(conversationID); err != nil {
		return notFound("No previous messages in this conversation.")
	}

	msgs, err := c.store.RecentMessages(ctx, conversationID, limit)
	if err != nil {
		return lookupFailed(ToolGetConversationContext, err, "Failed to retrieve conversation history.")
	}
	if len(msgs) == 0 {
		return notFound("No previous messages in this conversation.")
	}

	out := make([]ContextMessage, 0, len(msgs))
	for _, m := range msgs {
		agentType := "user"
		if m.AgentType != nil && *m.AgentType != "" {
			agentType = string(*m.AgentType)
		}
		out = append(out, ContextMessage{Role: string(m.Role), Content: m.Content, AgentType: agentType})
	}
	return ConversationContext{Found: true, MessageCount: len(out), Messages: out}
}

func (c *Catalog) getSupportCategories(context.Context, map[string]any) any {
	return SupportCategories{Found: true, Categories: supportCategories}
}
