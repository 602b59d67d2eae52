package tool

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	"github.com/tanpawarit/ai-support-router/agent/state"
)

func TestSearchFAQBuildsQuery(t *testing.T) {
	t.Parallel()

	lookup := demoLookup()
	out := NewCatalog(lookup).searchFAQ(context.Background(), map[string]any{"query": "How is SHIPPING done", "category": "all"})

	got, ok := out.(FAQResults)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if len(got.Results) != 1 || got.Results[0].Category != "shipping" {
		t.Fatalf("unexpected results: %#v", got.Results)
	}

	wantWords := []string{"how", "shipping", "done"}
	if !reflect.DeepEqual(lookup.lastFAQQuery.Words, wantWords) {
		t.Fatalf("words = %v, want %v", lookup.lastFAQQuery.Words, wantWords)
	}
	if lookup.lastFAQQuery.Text != "how is shipping done" {
		t.Fatalf("text = %q", lookup.lastFAQQuery.Text)
	}
	if lookup.lastFAQQuery.Category != "" {
		t.Fatalf("category = %q, want empty for all", lookup.lastFAQQuery.Category)
	}
	if lookup.lastFAQQuery.Limit != 3 {
		t.Fatalf("limit = %d, want 3", lookup.lastFAQQuery.Limit)
	}
}

func TestSearchFAQNotFound(t *testing.T) {
	t.Parallel()

	out := NewCatalog(demoLookup()).searchFAQ(context.Background(), map[string]any{"query": "warranty"})
	nf, ok := out.(NotFound)
	if !ok || nf.Message != `No FAQ found for "warranty". Answering from general knowledge.` {
		t.Fatalf("unexpected result: %#v", out)
	}
}

func TestGetConversationContext(t *testing.T) {
	t.Parallel()

	const conversationID = "66666666-6666-6666-6666-666666666666"
	agent := contractx.AgentTypeOrder
	lookup := demoLookup()
	for i := 0; i < 14; i++ {
		m := &state.Message{
			ConversationID: conversationID,
			Role:           contractx.RoleUser,
			Content:        fmt.Sprintf("m%d", i),
		}
		if i%2 == 1 {
			m.Role = contractx.RoleAssistant
			m.AgentType = &agent
		}
		lookup.messages = append(lookup.messages, m)
	}

	out := NewCatalog(lookup).getConversationContext(context.Background(), map[string]any{"conversationId": conversationID})
	got, ok := out.(ConversationContext)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if lookup.lastLimit != 10 || got.MessageCount != 10 {
		t.Fatalf("limit = %d, count = %d, want 10", lookup.lastLimit, got.MessageCount)
	}
	if got.Messages[0].Content != "m4" || got.Messages[9].Content != "m13" {
		t.Fatalf("unexpected order: first=%s last=%s", got.Messages[0].Content, got.Messages[9].Content)
	}
	if got.Messages[0].AgentType != "user" || got.Messages[1].AgentType != "order" {
		t.Fatalf("unexpected agent types: %#v", got.Messages[:2])
	}

	limited := NewCatalog(lookup).getConversationContext(context.Background(), map[string]any{"conversationId": conversationID, "limit": 2.0})
	if got := limited.(ConversationContext); got.MessageCount != 2 {
		t.Fatalf("messageCount = %d, want 2", got.MessageCount)
	}
}

func TestGetConversationContextRejectsMalformedID(t *testing.T) {
	t.Parallel()

	lookup := demoLookup()
	out := NewCatalog(lookup).getConversationContext(context.Background(), map[string]any{"conversationId": "conv-1"})
	if nf, ok := out.(NotFound); !ok || nf.Message != "No previous messages in this conversation." {
		t.Fatalf("unexpected result: %#v", out)
	}
	if lookup.lastLimit != 0 {
		t.Fatalf("store was queried for a malformed id")
	}
}
