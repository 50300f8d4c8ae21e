package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prepdeck/PrepDeck/internal/catalog"
	"github.com/prepdeck/PrepDeck/internal/metrics"
	"github.com/prepdeck/PrepDeck/internal/models"
	"github.com/prepdeck/PrepDeck/internal/session"
	"github.com/prepdeck/PrepDeck/internal/store"
)

// newTestServer builds a server over a demo-mode machine and an in-memory
// store, served through httptest.
func newTestServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load failed: %v", err)
	}
	m := metrics.New()
	machine := session.New(cat, store.NewInMemoryStore(),
		session.WithDemoMode(true),
		session.WithMetrics(m),
	)
	srv := NewServer(machine, cat, WithMetrics(m))
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, cat
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStartSessionEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "coding"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	if body.Status != string(models.APIStatusOK) {
		t.Errorf("expected ok status, got %s", body.Status)
	}

	// A second start while active is a guard warning, not an error.
	resp = postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "design"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 on double start, got %d", resp.StatusCode)
	}
	body = decodeResponse(t, resp)
	if body.Status != string(models.APIStatusWarning) {
		t.Errorf("expected warning status, got %s", body.Status)
	}
}

func TestStartSessionRejectsInvalidCategory(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "quantum"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStartSessionRejectsInvalidJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/session/start", "application/json", bytes.NewReader([]byte("{broken")))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
}

func TestSubmitAnswerFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "coding"})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/session/answer", map[string]string{"answer": "I would use a hash map."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	if body.Status != string(models.APIStatusOK) {
		t.Errorf("expected ok status, got %s", body.Status)
	}

	// Empty answers are guard warnings.
	resp = postJSON(t, ts.URL+"/api/session/answer", map[string]string{"answer": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty answer, got %d", resp.StatusCode)
	}
	body = decodeResponse(t, resp)
	if body.Status != string(models.APIStatusWarning) {
		t.Errorf("expected warning status, got %s", body.Status)
	}
}

func TestSubmitAnswerWithoutSession(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/session/answer", map[string]string{"answer": "hello"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without active session, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	if body.Status != string(models.APIStatusWarning) {
		t.Errorf("expected warning status, got %s", body.Status)
	}
}

func TestHintEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "coding"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/session/hint")
	if err != nil {
		t.Fatalf("GET hint failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	result, ok := body.Result.(map[string]interface{})
	if !ok || result["hint"] == "" {
		t.Errorf("expected a hint in the response, got %v", body.Result)
	}
}

func TestSessionStateEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "design"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/session/answer", map[string]string{"answer": "Shard by user id."})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatalf("GET session failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	result, ok := body.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object result, got %T", body.Result)
	}
	conversation, ok := result["conversation"].([]interface{})
	if !ok || len(conversation) != 2 {
		t.Errorf("expected 2 conversation entries, got %v", result["conversation"])
	}
}

func TestEndSessionEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "coding"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/session/answer", map[string]string{"answer": "answer one"})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/session/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	record, ok := body.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected session record result, got %T", body.Result)
	}
	if record["questions_asked"] != float64(2) {
		t.Errorf("expected questions_asked 2, got %v", record["questions_asked"])
	}
	if record["responses"] != float64(1) {
		t.Errorf("expected responses 1, got %v", record["responses"])
	}

	// Ending again is a guard warning.
	resp = postJSON(t, ts.URL+"/api/session/end", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 on double end, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPracticeAnswerEndpoint(t *testing.T) {
	ts, cat := newTestServer(t)
	q, err := cat.NextQuestion(models.CategoryCoding, 0)
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}

	resp := postJSON(t, ts.URL+"/api/practice/answer", map[string]string{
		"question_id": q.ID,
		"answer":      "I would use a hash map for O(n) lookup.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	eval, ok := body.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected evaluation result, got %T", body.Result)
	}
	if _, ok := eval["score"]; !ok {
		t.Error("expected a score in the evaluation")
	}
}

func TestPracticeAnswerUnknownQuestion(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/practice/answer", map[string]string{
		"question_id": "no-such-question",
		"answer":      "anything",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown question, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestChatEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/chat", map[string]string{"message": "How do I prepare for system design?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	result, ok := body.Result.(map[string]interface{})
	if !ok || result["reply"] == "" {
		t.Errorf("expected a reply, got %v", body.Result)
	}
}

func TestModeEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/mode", map[string]bool{"demo_mode": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	result, ok := body.Result.(map[string]interface{})
	if !ok || result["demo_mode"] != true {
		t.Errorf("expected demo_mode true, got %v", body.Result)
	}
}

func TestRecordingEndpointGuard(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/recording", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without active session, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDashboardEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/dashboard")
	if err != nil {
		t.Fatalf("GET dashboard failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	result, ok := body.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected dashboard result, got %T", body.Result)
	}
	if _, ok := result["readiness"]; !ok {
		t.Error("expected readiness in dashboard")
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"category": "coding"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET stats failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeResponse(t, resp)
	result, ok := body.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected stats result, got %T", body.Result)
	}
	if result["sessions_started"] != float64(1) {
		t.Errorf("expected 1 session started, got %v", result["sessions_started"])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("GET history failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/session/start"},
		{http.MethodPost, "/api/session/hint"},
		{http.MethodGet, "/api/session/end"},
		{http.MethodPost, "/api/dashboard"},
		{http.MethodDelete, "/health"},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s failed: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tt.method, tt.path, resp.StatusCode)
		}
	}
}
