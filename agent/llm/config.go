package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	openrouterx "github.com/tanpawarit/ai-support-router/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-flash-1.5"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel     string `envconfig:"ROUTER_MODEL" split_words:"true"`
	OrderModel      string `envconfig:"ORDER_MODEL" split_words:"true"`
	BillingModel    string `envconfig:"BILLING_MODEL" split_words:"true"`
	SupportModel    string `envconfig:"SUPPORT_MODEL" split_words:"true" default:"google/gemini-pro-1.5"`
	RouterMaxTokens int    `envconfig:"ROUTER_MAX_TOKENS" split_words:"true" default:"150"`

	// Negative temperatures fall back to Temperature.
	RouterTemperature  float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"0"`
	OrderTemperature   float32 `envconfig:"ORDER_TEMPERATURE" split_words:"true" default:"-1"`
	BillingTemperature float32 `envconfig:"BILLING_TEMPERATURE" split_words:"true" default:"-1"`
	SupportTemperature float32 `envconfig:"SUPPORT_TEMPERATURE" split_words:"true" default:"-1"`
}

// Ready reports whether the provider can be called. A missing key leaves the
// process up in degraded mode.
func (c Config) Ready() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature
	maxCompletionToken := c.MaxCompletionToken

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch agentType {
	case contractx.AgentTypeRouter:
		override(c.RouterModel, c.RouterTemperature)
		if c.RouterMaxTokens > 0 {
			maxCompletionToken = c.RouterMaxTokens
		}
	case contractx.AgentTypeOrder:
		override(c.OrderModel, c.OrderTemperature)
	case contractx.AgentTypeBilling:
		override(c.BillingModel, c.BillingTemperature)
	case contractx.AgentTypeSupport:
		override(c.SupportModel, c.SupportTemperature)
	}

	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
