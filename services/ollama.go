package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/logan-wrld/austin-port-to-rail/config"
)

// Oracle is the narrow inference capability the analytics layer
// consumes: prompt text in, generated text out.
type Oracle interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Model() string
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	// JSONFormat asks the model server to constrain output to JSON.
	JSONFormat bool
	Timeout    time.Duration
}

// OllamaService talks to an Ollama server's generate endpoint.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaService(cfg config.OllamaConfig) *OllamaService {
	return &OllamaService{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		model:   cfg.Model,
		client:  &http.Client{},
	}
}

func (s *OllamaService) Model() string {
	return s.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a non-streaming completion request. Transport and
// server failures surface as ErrOracleUnavailable; the response text
// is returned untouched, whatever it is.
func (s *OllamaService) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}
	if opts.JSONFormat {
		payload.Format = "json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrOracleUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrOracleUnavailable, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("%w: decode response envelope: %v", ErrOracleUnavailable, err)
	}

	return gr.Response, nil
}

// OllamaRunner owns an optionally managed `ollama serve` subprocess.
// It is constructed in main and stopped on every exit path; nothing
// else holds the process handle.
type OllamaRunner struct {
	cmd *exec.Cmd
}

// StartOllamaRunner launches the model server bound to ctx, so a
// signal-driven shutdown also tears the process down.
func StartOllamaRunner(ctx context.Context, binary string) (*OllamaRunner, error) {
	cmd := exec.CommandContext(ctx, binary, "serve")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s serve: %w", binary, err)
	}
	log.Printf("managed ollama serve started, pid=%d", cmd.Process.Pid)
	return &OllamaRunner{cmd: cmd}, nil
}

// Stop terminates the managed process and reaps it. Safe on a nil
// runner so callers can defer unconditionally.
func (r *OllamaRunner) Stop() {
	if r == nil || r.cmd == nil || r.cmd.Process == nil {
		return
	}
	if err := r.cmd.Process.Kill(); err != nil {
		log.Printf("stop managed ollama: %v", err)
	}
	_ = r.cmd.Wait()
	log.Printf("managed ollama serve stopped")
}
