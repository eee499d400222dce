package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// maxSourceChars caps the source material handed to the generator.
const maxSourceChars = 12000

// HTTPDoer abstracts the HTTP client used by the generator.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    HTTPDoer
}

func NewClient(model, apiKey, baseURL string, httpClient HTTPDoer) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    httpClient,
	}, nil
}

// Request describes one generation call.
type Request struct {
	Topic  string
	Source string // optional source material, truncated to maxSourceChars
	Count  int
	Types  []quiz.QuestionType
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateQuiz asks the generator for a quiz and validates whatever comes
// back. Per-question drops are reported on the result, not as an error.
func (c *Client) GenerateQuiz(ctx context.Context, req Request) (*Generated, error) {
	if req.Count <= 0 {
		req.Count = 5
	}
	if len(req.Types) == 0 {
		req.Types = quiz.Types
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generator error: %s", strings.TrimSpace(string(body)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("generator returned no choices")
	}
	return ValidateGenerated(chat.Choices[0].Message.Content, req.Types)
}

const systemPrompt = `You are a quiz author. Respond with a single JSON object and nothing else.`

func buildPrompt(req Request) string {
	types := make([]string, len(req.Types))
	for i, t := range req.Types {
		types[i] = string(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a quiz of %d questions about %q.\n", req.Count, req.Topic)
	fmt.Fprintf(&b, "Allowed question types: %s.\n", strings.Join(types, ", "))
	b.WriteString(`Return JSON: {"title","description","questions":[{"type","text","points","explanation","data"}]}.
Per-type data payloads:
  single_choice: {"options":[...],"correct_index":0}
  multiple_choice: {"options":[...],"correct_indices":[...]}
  true_false: {"correct_answer":true}
  numeric: {"correct_answer":42.5,"unit":""}
  matching: {"pairs":[{"left","right"},...]}
  cloze: {"text":"... {0} ...","blanks":[{"kind":"dropdown","options":[...],"correct_index":0} or {"kind":"text","correct_answer":"..."}]}
  essay: {}
`)
	if req.Source != "" {
		source := req.Source
		if len(source) > maxSourceChars {
			source = source[:maxSourceChars]
		}
		b.WriteString("Base the questions on this material:\n")
		b.WriteString(source)
		b.WriteByte('\n')
	}
	return b.String()
}
