package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Roles used by the chat-completions protocol.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation sent to the remote model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the text of the first choice returned by the model.
type Completion struct {
	Text      string
	Model     string
	LatencyMs int64
}

// CompletionClient sends a conversation to a text-generation service.
type CompletionClient interface {
	// Complete makes exactly one request. It never retries; use Retryable to
	// decide whether a retry makes sense.
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}

// openAIClient implements CompletionClient against an OpenAI-compatible
// chat-completions endpoint.
type openAIClient struct {
	cfg      Config
	creds    CredentialSource
	http     *http.Client
	observer Observer
}

// NewOpenAIClient creates a CompletionClient. A nil observer discards events.
func NewOpenAIClient(cfg Config, creds CredentialSource, observer Observer) CompletionClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &openAIClient{
		cfg:   cfg,
		creds: creds,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openAIClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	start := time.Now()

	var creds CredentialSource = c.creds
	if creds == nil {
		creds = StaticCredential("")
	}
	key, err := creds.APIKey(ctx)
	if err != nil {
		c.record(start, 0, err)
		return nil, err
	}

	if c.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	resp, status, err := c.doRequest(ctx, key, body)
	c.record(start, status, err)
	if err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = c.cfg.Model
	}
	return &Completion{
		Text:      *resp.Choices[0].Message.Content,
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *openAIClient) doRequest(ctx context.Context, key string, body chatRequest) (*chatResponse, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, httpResp.StatusCode, &UpstreamError{
			StatusCode: httpResp.StatusCode,
			Message:    upstreamMessage(respBody),
		}
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, httpResp.StatusCode, &UpstreamError{
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return nil, httpResp.StatusCode, &UpstreamError{
			StatusCode: httpResp.StatusCode,
			Err:        ErrMalformedResponse,
		}
	}
	return &resp, httpResp.StatusCode, nil
}

func (c *openAIClient) record(start time.Time, status int, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Model:      c.cfg.Model,
		LatencyMs:  time.Since(start).Milliseconds(),
		Success:    err == nil,
		StatusCode: status,
		ErrorCode:  ErrorCode(err),
	})
}

// upstreamMessage extracts error.message from an API error body, falling back
// to a trimmed prefix of the raw body.
func upstreamMessage(body []byte) string {
	var eb apiErrorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
