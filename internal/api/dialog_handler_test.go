package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"chatlearn/internal/config"
	"chatlearn/internal/dialog"
	"chatlearn/internal/store"
)

func testRouter(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mem := store.NewMemory()
	dbs := dialog.Databases{
		Topics:        "topics",
		UserProfiles:  "user-profiles",
		SessionEvents: "user-session-events",
		Feedback:      "feedback",
	}
	engine := dialog.NewEngine(mem, dbs, nil)
	reg := dialog.NewRegistry("dialog")
	reg.Register("dialog", engine)

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Dialog.DefaultService = "dialog"
	return SetupRouter(cfg, reg, nil), mem
}

func postDialog(router *gin.Engine, service, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/webhooks/dialog/"+service, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestNoRouteReturnsJSON(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nope", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if !contains(w.Body.String(), "Endpoint not found") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestActionsEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/actions", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !contains(w.Body.String(), "getAllTopics") {
		t.Errorf("action list should include getAllTopics: %s", w.Body.String())
	}
}

func TestConfigEndpointOmitsSecrets(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/config", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !contains(body, `"defaultService":"dialog"`) {
		t.Errorf("unexpected body: %s", body)
	}
	if contains(body, "apiKey") || contains(body, "password") {
		t.Errorf("config endpoint leaked secrets: %s", body)
	}
}

func TestDialogUnknownService(t *testing.T) {
	router, _ := testRouter(t)
	w := postDialog(router, "dialog-v0", `{"action":"getAllTopics"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if !contains(w.Body.String(), "Service handling failed or service not found") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestDialogLatestAlias(t *testing.T) {
	router, _ := testRouter(t)
	w := postDialog(router, "latest", `{"action":"getAllTopics"}`)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDialogInvalidJSON(t *testing.T) {
	router, _ := testRouter(t)
	w := postDialog(router, "dialog", `{"action":`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !contains(w.Body.String(), "request body is not valid JSON") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestDialogMissingAction(t *testing.T) {
	router, _ := testRouter(t)
	w := postDialog(router, "dialog", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !contains(w.Body.String(), "action parameter is not provided") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestDialogActionRoundTrip(t *testing.T) {
	router, mem := testRouter(t)
	if _, err := mem.Put(context.Background(), "topics", store.Doc{
		"_id": "pm01:topicConfig", "docType": "topicConfig", "name": "Planning",
	}); err != nil {
		t.Fatal(err)
	}

	w := postDialog(router, "dialog", `{"action":"getAllTopics"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	docs := out["docs"].([]interface{})
	if len(docs) != 1 {
		t.Errorf("docs: %v", docs)
	}
	if !contains(w.Body.String(), "Please select a topic from the list below:") {
		t.Errorf("menu missing: %s", w.Body.String())
	}
}

func TestDialogErrorStatusPassThrough(t *testing.T) {
	router, _ := testRouter(t)
	w := postDialog(router, "dialog", `{"action":"getUserBasicInfo","userId":"ghost"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected store 404, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), `"httpStatus":404`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
