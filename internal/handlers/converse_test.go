package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/tools"
	"github.com/smaro-ai/agent-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type fakeConverse struct {
	response string
	actions  []types.ToolAction
	details  []types.ToolDetail
	err      error

	gotConversationID string
	gotPrompt         string
}

func (f *fakeConverse) HandleMessage(_ context.Context, conversationID, prompt string) (string, []types.ToolAction, []types.ToolDetail, error) {
	f.gotConversationID = conversationID
	f.gotPrompt = prompt
	if f.err != nil {
		return "", nil, nil, f.err
	}
	return f.response, f.actions, f.details, nil
}

func postConverse(t *testing.T, svc *fakeConverse, body string) (*httptest.ResponseRecorder, ConverseResponseDTO) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/taskproof/converse_faq", NewConverseHandler(testLogger(t), svc).ConverseFAQ)

	req := httptest.NewRequest("POST", "/taskproof/converse_faq", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var dto ConverseResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v; body=%s", err, rec.Body.String())
	}
	return rec, dto
}

func TestConverseFAQSuccess(t *testing.T) {
	svc := &fakeConverse{
		response: "Reports arrive within 24 hours.",
		actions:  []types.ToolAction{{Action: tools.AnswerFAQ}},
		details:  []types.ToolDetail{{Thought: "Reports arrive within 24 hours.", ToolName: tools.AnswerFAQ}},
	}

	rec, dto := postConverse(t, svc, `{"message_id":"m1","conversation_id":"c1","consumer_id":"u1","prompt":"when do reports arrive?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !dto.Success || dto.Error != "" {
		t.Fatalf("dto = %+v, want success with empty error", dto)
	}
	if dto.Response != svc.response {
		t.Fatalf("response = %q", dto.Response)
	}
	if len(dto.Type) != 1 || dto.Type[0].Action != tools.AnswerFAQ {
		t.Fatalf("type = %+v", dto.Type)
	}
	if len(dto.Functions) != 1 || dto.Functions[0].ToolName != tools.AnswerFAQ {
		t.Fatalf("functions = %+v", dto.Functions)
	}
	if svc.gotConversationID != "c1" || svc.gotPrompt != "when do reports arrive?" {
		t.Fatalf("service got conversation=%q prompt=%q", svc.gotConversationID, svc.gotPrompt)
	}
}

func TestConverseFAQNumericConversationID(t *testing.T) {
	svc := &fakeConverse{response: "ok", actions: []types.ToolAction{}, details: []types.ToolDetail{}}

	_, _ = postConverse(t, svc, `{"conversation_id":12345,"prompt":"hi"}`)
	if svc.gotConversationID != "12345" {
		t.Fatalf("conversation id = %q, want 12345 without a decimal point", svc.gotConversationID)
	}
}

func TestConverseFAQMissingConversationID(t *testing.T) {
	svc := &fakeConverse{response: "ok", actions: []types.ToolAction{}, details: []types.ToolDetail{}}

	_, _ = postConverse(t, svc, `{"prompt":"hi"}`)
	if svc.gotConversationID != "" {
		t.Fatalf("conversation id = %q, want empty", svc.gotConversationID)
	}
}

func TestConverseFAQServiceFailureStillHTTP200(t *testing.T) {
	svc := &fakeConverse{err: fmt.Errorf("intent resolution: model unavailable")}

	rec, dto := postConverse(t, svc, `{"prompt":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on failure", rec.Code)
	}
	if dto.Success {
		t.Fatal("success must be false on failure")
	}
	if dto.Response != DegradedResponse {
		t.Fatalf("response = %q, want the degraded sentence", dto.Response)
	}
	if dto.Error == "" {
		t.Fatal("error field must carry the failure")
	}
	if dto.Type == nil || dto.Functions == nil {
		t.Fatalf("type/functions must be empty lists, not null: %s", rec.Body.String())
	}
}

func TestConverseFAQMalformedBody(t *testing.T) {
	svc := &fakeConverse{}

	rec, dto := postConverse(t, svc, `{"prompt":`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if dto.Success || dto.Response != DegradedResponse {
		t.Fatalf("dto = %+v, want degraded response", dto)
	}
	if svc.gotPrompt != "" {
		t.Fatal("service must not be called for a malformed body")
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthcheck", HealthCheck)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck = %d %q", rec.Code, rec.Body.String())
	}
}
