package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigured(t *testing.T) {
	t.Parallel()

	if (Config{APIKey: "k"}).Configured() {
		t.Fatalf("Configured() = true without model")
	}
	if !(Config{APIKey: "k", Model: "m"}).Configured() {
		t.Fatalf("Configured() = false with key and model")
	}
}

func TestNewClientWithoutKey(t *testing.T) {
	t.Parallel()

	if NewClient(Config{}) != nil {
		t.Fatalf("NewClient() without api key returned a client")
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[{"id":"google/gemini-flash-1.5","object":"model","created":1,"owned_by":"google"}]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	if client == nil {
		t.Fatalf("NewClient() = nil")
	}

	if err := Probe(context.Background(), client, "google/gemini-flash-1.5"); err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if gotPath != "/models" {
		t.Fatalf("path = %q, want /models", gotPath)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("Authorization = %q, want Bearer key", gotAuth)
	}

	err := Probe(context.Background(), client, "missing/model")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("Probe() error = %v, want ErrModelUnavailable", err)
	}
}

func TestProbeNilClient(t *testing.T) {
	t.Parallel()

	if err := Probe(context.Background(), nil, "m"); err == nil {
		t.Fatalf("Probe(nil) error = nil")
	}
}
