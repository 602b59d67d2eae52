package tool

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	dateLayout     = "Mon Jan 02 2006"
	shortDateLayout = "Jan 2, 2006"
	longDateLayout = "Monday, January 2, 2006"
)

// NotFound is the uniform result of a lookup that produced nothing usable.
type NotFound struct {
	Found   bool   `json:"found"`
	Message string `json:"message"`
}

func notFound(format string, args ...any) NotFound {
	return NotFound{Found: false, Message: fmt.Sprintf(format, args...)}
}

func money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func moneyWithCurrency(amount float64, currency string) string {
	return money(amount) + " " + currency
}

func formatDate(t time.Time, layout string) string {
	return t.UTC().Format(layout)
}

func formatDatePtr(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t, layout)
	return &s
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func requiredString(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return s, nil
}

func optionalString(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return strings.TrimSpace(s), nil
}

// optionalInt accepts JSON numbers, which decode as float64.
func optionalInt(args map[string]any, name string, fallback int) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}
