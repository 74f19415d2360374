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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openaiStaticModels is the fallback list when the API is unreachable or
// listing is not wanted.
var openaiStaticModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"gpt-4",
	"gpt-3.5-turbo",
}

// OpenAIAdapter calls the OpenAI chat completions API. It never lets a
// transport error escape Run; everything becomes exit code 1 plus a
// message.
type OpenAIAdapter struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewOpenAIAdapter builds the adapter. baseURL and client are overridable
// for tests; empty/nil select the real endpoint and a default client.
func NewOpenAIAdapter(apiKey, baseURL string, timeout time.Duration, client *http.Client) *OpenAIAdapter {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAIAdapter{apiKey: apiKey, baseURL: baseURL, timeout: timeout, client: client}
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) Detect() DetectionResult {
	// Detection must be free and fast: validate the credential's shape,
	// never the network.
	if a.apiKey == "" {
		return DetectionResult{
			Detected: false,
			Error:    "OPENAI_API_KEY not set",
		}
	}
	if !strings.HasPrefix(a.apiKey, "sk-") {
		return DetectionResult{
			Detected:   true,
			AuthStatus: AuthError,
			Trusted:    true,
			Error:      "API key does not look like an OpenAI key",
		}
	}
	return DetectionResult{
		Detected:   true,
		AuthStatus: AuthUnknown,
		Trusted:    true,
	}
}

func (a *OpenAIAdapter) ListModels() []string {
	return append([]string(nil), openaiStaticModels...)
}

type openaiChatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (a *OpenAIAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	start := time.Now()

	if a.apiKey == "" {
		return RunResult{ExitCode: 1, Error: "OPENAI_API_KEY not set"}
	}

	messages := []chatMessage{}
	if opts.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload := openaiChatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("marshaling request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

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

	var parsed openaiChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: fmt.Sprintf("parsing response: %v", err), Raw: respBody}
	}
	if len(parsed.Choices) == 0 {
		return RunResult{ExitCode: 1, WallTime: time.Since(start), Error: "empty choices in API response", Raw: respBody}
	}

	return RunResult{
		Output:    parsed.Choices[0].Message.Content,
		ExitCode:  0,
		WallTime:  time.Since(start),
		TokensIn:  parsed.Usage.PromptTokens,
		TokensOut: parsed.Usage.CompletionTokens,
		Raw:       respBody,
	}
}

func (a *OpenAIAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          true,
		SupportsSystemPrompt: true,
		Offline:              false,
	}
}
