package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConsult(t *testing.T) {
	var gotAuth, gotOrg string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotOrg = r.Header.Get("OpenAi-Organization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Line one.\nLine two."}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		APIURL:       server.URL,
		APIKey:       "test-key",
		Organization: "org-1",
		Model:        "gpt-4o-mini",
		Prompt:       "You are a tutor.",
		MaxTokens:    128,
	})
	res, err := client.Consult(context.Background(), "explain scope creep")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != 200 || res.StatusText != "OK" {
		t.Errorf("status: %d %s", res.Status, res.StatusText)
	}
	if res.GPTAnswer != "Line one.Line two." {
		t.Errorf("newlines should be stripped: %q", res.GPTAnswer)
	}
	usage := res.Usage.(map[string]interface{})
	if usage["total_tokens"] != float64(42) {
		t.Errorf("usage: %v", res.Usage)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: %q", gotAuth)
	}
	if gotOrg != "org-1" {
		t.Errorf("org header: %q", gotOrg)
	}
	if gotBody.Model != "gpt-4o-mini" || gotBody.MaxTokens != 128 {
		t.Errorf("request body: %+v", gotBody)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "explain scope creep" {
		t.Errorf("messages: %+v", gotBody.Messages)
	}
}

func TestConsultUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIURL: server.URL})
	_, err := client.Consult(context.Background(), "hello")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != 429 || apiErr.Msg != "Too Many Requests" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestConsultTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Config{APIURL: server.URL})
	_, err := client.Consult(context.Background(), "hello")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != 0 {
		t.Errorf("failed requests carry no HTTP status: %d", apiErr.Status)
	}
}

func TestConsultEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIURL: server.URL})
	res, err := client.Consult(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if res.GPTAnswer != "" {
		t.Errorf("answer: %q", res.GPTAnswer)
	}
}
