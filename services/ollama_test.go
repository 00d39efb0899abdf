package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/logan-wrld/austin-port-to-rail/config"
)

func newOllamaService(url string) *OllamaService {
	return NewOllamaService(config.OllamaConfig{URL: url, Model: "qwen2.5:1.5b"})
}

func TestGenerateRequestShape(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Model: "qwen2.5:1.5b", Response: `{"ok": true}`, Done: true})
	}))
	defer server.Close()

	svc := newOllamaService(server.URL)
	resp, err := svc.Generate(context.Background(), "analyze this", GenerateOptions{
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONFormat:  true,
		Timeout:     10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp != `{"ok": true}` {
		t.Errorf("response = %q", resp)
	}

	if got.Model != "qwen2.5:1.5b" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Prompt != "analyze this" {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if got.Stream {
		t.Error("stream must be false")
	}
	if got.Format != "json" {
		t.Errorf("format = %q, want json", got.Format)
	}
	if got.Options.Temperature != 0.3 {
		t.Errorf("temperature = %v", got.Options.Temperature)
	}
	if got.Options.NumPredict != 2000 {
		t.Errorf("num_predict = %d", got.Options.NumPredict)
	}
}

func TestGenerateOmitsFormatWhenUnconstrained(t *testing.T) {
	var rawBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&rawBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "hello", Done: true})
	}))
	defer server.Close()

	svc := newOllamaService(server.URL)
	if _, err := svc.Generate(context.Background(), "hi", GenerateOptions{Temperature: 0.7, MaxTokens: 500}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, ok := rawBody["format"]; ok {
		t.Error("format key must be omitted for free-form generation")
	}
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newOllamaService(server.URL)
	_, err := svc.Generate(context.Background(), "hi", GenerateOptions{})
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Errorf("err = %v, want ErrOracleUnavailable", err)
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := newOllamaService(server.URL)
	_, err := svc.Generate(context.Background(), "hi", GenerateOptions{})
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Errorf("err = %v, want ErrOracleUnavailable", err)
	}
}

func TestGenerateMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	svc := newOllamaService(server.URL)
	_, err := svc.Generate(context.Background(), "hi", GenerateOptions{})
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Errorf("err = %v, want ErrOracleUnavailable", err)
	}
}

func TestGenerateTrailingSlashTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	svc := newOllamaService(server.URL + "/")
	if _, err := svc.Generate(context.Background(), "hi", GenerateOptions{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestStopNilRunner(t *testing.T) {
	var r *OllamaRunner
	r.Stop()
}
