package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

func TestOpenRouterForRouterUsesMaxTokens(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:             "key",
		Model:              "base",
		MaxCompletionToken: 2000,
		Temperature:        0.5,
		RouterModel:        "router-model",
		RouterMaxTokens:    150,
		RouterTemperature:  0,
		OrderTemperature:   -1,
	}

	got := cfg.OpenRouterFor(contractx.AgentTypeRouter)
	if got.Model != "router-model" {
		t.Fatalf("router model = %q, want router-model", got.Model)
	}
	if got.MaxCompletionToken == nil || *got.MaxCompletionToken != 150 {
		t.Fatalf("router max tokens = %v, want 150", got.MaxCompletionToken)
	}
	if got.Temperature != 0 {
		t.Fatalf("router temperature = %v, want 0", got.Temperature)
	}

	order := cfg.OpenRouterFor(contractx.AgentTypeOrder)
	if order.Model != "base" {
		t.Fatalf("order model = %q, want base", order.Model)
	}
	if order.Temperature != 0.5 {
		t.Fatalf("order temperature = %v, want 0.5", order.Temperature)
	}
	if *order.MaxCompletionToken != 2000 {
		t.Fatalf("order max tokens = %d, want 2000", *order.MaxCompletionToken)
	}
}

func TestReadyRequiresKey(t *testing.T) {
	t.Parallel()

	err := Config{Model: "m"}.Ready()
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Ready() error = %v, want ErrValidation", err)
	}
}
