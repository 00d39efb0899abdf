package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/logan-wrld/austin-port-to-rail/services"
)

type recordingOracle struct {
	stubOracle
	gotPrompt string
}

func (r *recordingOracle) Generate(ctx context.Context, prompt string, opts services.GenerateOptions) (string, error) {
	r.gotPrompt = prompt
	return r.stubOracle.Generate(ctx, prompt, opts)
}

func newChatRouter(oracle services.Oracle) *gin.Engine {
	h := NewChatHandler(services.NewMetricsEngine(nil), oracle, time.Minute)
	router := gin.New()
	router.POST("/api/chat", h.Chat)
	return router
}

func TestChat(t *testing.T) {
	oracle := &recordingOracle{stubOracle: stubOracle{response: "Expect elevated volume this afternoon."}}
	router := newChatRouter(oracle)

	w := performRequest(router, http.MethodPost, "/api/chat",
		strings.NewReader(`{"message": "How does the afternoon look?"}`))
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["response"] != "Expect elevated volume this afternoon." {
		t.Errorf("response = %v", body["response"])
	}
	if body["model"] != "stub-model" {
		t.Errorf("model = %v", body["model"])
	}
	if _, ok := body["metrics"].(map[string]any); !ok {
		t.Errorf("metrics missing: %v", body["metrics"])
	}

	for _, want := range []string{
		"port-to-rail logistics analysis",
		"Current TEU volume:",
		"Next 6-Hour Forecast:",
		"User Question: How does the afternoon look?",
	} {
		if !strings.Contains(oracle.gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChatEmptyMessage(t *testing.T) {
	router := newChatRouter(&stubOracle{response: "ok"})

	for _, body := range []string{`{}`, `{"message": "   "}`, `not json`} {
		w := performRequest(router, http.MethodPost, "/api/chat", strings.NewReader(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestChatOracleDown(t *testing.T) {
	router := newChatRouter(&stubOracle{err: services.ErrOracleUnavailable})

	w := performRequest(router, http.MethodPost, "/api/chat",
		strings.NewReader(`{"message": "hello"}`))
	requireStatus(t, w, http.StatusServiceUnavailable)
}
