package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"

	// The messages API requires max_tokens; used when the caller sets none.
	anthropicDefaultMaxTokens = 1024
)

var anthropicStaticModels = []string{
	"claude-sonnet-4-5",
	"claude-opus-4-1",
	"claude-haiku-4-5",
}

// AnthropicAdapter calls the Anthropic messages API.
type AnthropicAdapter struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewAnthropicAdapter(apiKey, baseURL string, timeout time.Duration, client *http.Client) *AnthropicAdapter {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &AnthropicAdapter{apiKey: apiKey, baseURL: baseURL, timeout: timeout, client: client}
}

func (a *AnthropicAdapter) Name() string { return "anthropic" }

func (a *AnthropicAdapter) Detect() DetectionResult {
	if a.apiKey == "" {
		return DetectionResult{
			Detected: false,
			Error:    "ANTHROPIC_API_KEY not set",
		}
	}
	if !strings.HasPrefix(a.apiKey, "sk-ant-") {
		return DetectionResult{
			Detected:   true,
			AuthStatus: AuthError,
			Trusted:    true,
			Error:      "API key does not look like an Anthropic key",
		}
	}
	return DetectionResult{
		Detected:   true,
		AuthStatus: AuthUnknown,
		Trusted:    true,
	}
}

func (a *AnthropicAdapter) ListModels() []string {
	return append([]string(nil), anthropicStaticModels...)
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *AnthropicAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	start := time.Now()

	if a.apiKey == "" {
		return RunResult{ExitCode: 1, Error: "ANTHROPIC_API_KEY not set"}
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	payload := anthropicRequest{
		Model:       opts.Model,
		MaxTokens:   maxTokens,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		System:      opts.SystemPrompt,
		Temperature: opts.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("marshaling request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("API request: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("reading response: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return RunResult{
			ExitCode: 1,
			WallTime: time.Since(start),
			Error:    fmt.Sprintf("API returned %d: %s", resp.StatusCode, string(respBody)),
			Raw:      respBody,
		}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("parsing response: %v", err), Raw: respBody}
	}

	var output strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" || block.Type == "" {
			output.WriteString(block.Text)
		}
	}

	return RunResult{
		Output:    output.String(),
		ExitCode:  0,
		WallTime:  time.Since(start),
		TokensIn:  parsed.Usage.InputTokens,
		TokensOut: parsed.Usage.OutputTokens,
		Raw:       respBody,
	}
}

func (a *AnthropicAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          true,
		MaxTokens:            8192,
		MaxContext:           200000,
		SupportsSystemPrompt: true,
		Offline:              false,
	}
}
