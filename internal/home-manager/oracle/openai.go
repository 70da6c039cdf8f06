// Package oracle provides the OpenAI-backed scheduling oracle. The client
// makes a single attempt per batch; callers own all fallback behavior.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/scheduling"
	"github.com/mikermcconnell/HomeHealth/internal/models"
	"github.com/mikermcconnell/HomeHealth/pkg/validation"
)

const (
	apiKeyEnvVar  = "OPENAI_API_KEY"
	modelEnvVar   = "ORACLE_MODEL"
	timeoutEnvVar = "ORACLE_TIMEOUT_SECONDS"
	baseURLEnvVar = "ORACLE_BASE_URL"

	defaultModel   = "gpt-4o-mini"
	defaultBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultTimeout = 30 * time.Second
)

// ErrNoAPIKey means the oracle is not configured; schedulers run on
// fallback alone.
var ErrNoAPIKey = errors.New("oracle: " + apiKeyEnvVar + " is not set")

// requestSchema is handed to the API as the strict structured-output
// format.
const requestSchema = `{
  "type": "object",
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "due_date": {"type": "string", "description": "ISO 8601 calendar date"},
          "category": {"type": "string"}
        },
        "required": ["title", "due_date", "category"],
        "additionalProperties": false
      }
    }
  },
  "required": ["suggestions"],
  "additionalProperties": false
}`

// responseShapeSchema is the local gate on what comes back. It is looser
// than requestSchema on purpose: only the batch-level shape is enforced
// here, so an item with a bad or missing date stays an item-level problem
// for the scheduler's per-item fallback instead of failing the batch.
const responseShapeSchema = `{
  "oneOf": [
    {"type": "array", "items": {"type": "object"}},
    {
      "type": "object",
      "required": ["suggestions"],
      "properties": {
        "suggestions": {"type": "array", "items": {"type": "object"}}
      }
    }
  ]
}`

// ideasSchema is the strict structured-output format for project
// brainstorms.
const ideasSchema = `{
  "type": "object",
  "properties": {
    "ideas": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"}
        },
        "required": ["title", "description"],
        "additionalProperties": false
      }
    }
  },
  "required": ["ideas"],
  "additionalProperties": false
}`

// ideasShapeSchema gates brainstorm answers the same lenient way
// responseShapeSchema gates schedules.
const ideasShapeSchema = `{
  "oneOf": [
    {"type": "array", "items": {"type": "object"}},
    {
      "type": "object",
      "required": ["ideas"],
      "properties": {
        "ideas": {"type": "array", "items": {"type": "object"}}
      }
    }
  ]
}`

// Client calls the OpenAI chat completions API and implements
// scheduling.Oracle plus the project brainstormer.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	shape      *jsonschema.Schema
	ideaShape  *jsonschema.Schema
}

var _ scheduling.Oracle = (*Client)(nil)

// NewClient builds an oracle client. Empty model, baseURL, or timeout fall
// back to defaults; a missing API key is ErrNoAPIKey.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	shape, err := validation.CompileSchema("oracle-response.json", responseShapeSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile oracle response schema: %w", err)
	}
	ideaShape, err := validation.CompileSchema("oracle-ideas.json", ideasShapeSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile oracle ideas schema: %w", err)
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		shape:      shape,
		ideaShape:  ideaShape,
	}, nil
}

// NewClientFromEnv builds a client from OPENAI_API_KEY, ORACLE_MODEL,
// ORACLE_BASE_URL, and ORACLE_TIMEOUT_SECONDS.
func NewClientFromEnv() (*Client, error) {
	timeout := defaultTimeout
	if raw := os.Getenv(timeoutEnvVar); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		} else {
			log.Printf("Oracle: invalid %s value %q, using default %v", timeoutEnvVar, raw, defaultTimeout)
		}
	}
	return NewClient(os.Getenv(apiKeyEnvVar), os.Getenv(modelEnvVar), os.Getenv(baseURLEnvVar), timeout)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *responseSchema `json:"json_schema,omitempty"`
}

type responseSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// SuggestSchedule asks the model for a due date and category per template.
func (c *Client) SuggestSchedule(ctx context.Context, req scheduling.BatchRequest) ([]scheduling.Suggestion, error) {
	userPrompt, err := buildUserPrompt(req)
	if err != nil {
		return nil, err
	}
	format := &responseFormat{
		Type: "json_schema",
		JSONSchema: &responseSchema{
			Name:   "maintenance_schedule",
			Strict: true,
			Schema: json.RawMessage(requestSchema),
		},
	}
	content, err := c.chat(ctx, systemPrompt(), userPrompt, 0.2, format)
	if err != nil {
		return nil, err
	}
	return c.decodeSuggestions(content)
}

// BrainstormProjects asks the model for themed improvement project ideas.
func (c *Client) BrainstormProjects(ctx context.Context, theme string, homeType models.HomeType, location string) ([]models.ProjectIdea, error) {
	format := &responseFormat{
		Type: "json_schema",
		JSONSchema: &responseSchema{
			Name:   "project_ideas",
			Strict: true,
			Schema: json.RawMessage(ideasSchema),
		},
	}
	content, err := c.chat(ctx, brainstormSystemPrompt, buildBrainstormPrompt(theme, homeType, location), 0.7, format)
	if err != nil {
		return nil, err
	}
	return c.decodeIdeas(content)
}

// chat performs one chat-completions call and returns the first choice's
// message content.
func (c *Client) chat(ctx context.Context, system, user string, temperature float64, format *responseFormat) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    temperature,
		ResponseFormat: format,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode oracle request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create oracle request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("oracle call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle API error (%s): %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode oracle response envelope: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle response contains no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// decodeSuggestions turns the model's message content into suggestions,
// accepting either the wrapped object the schema asks for or a bare array.
func (c *Client) decodeSuggestions(content string) ([]scheduling.Suggestion, error) {
	payload := salvageJSON(content)
	if payload == "" {
		return nil, fmt.Errorf("oracle response contains no JSON payload")
	}
	if err := validation.ValidateJSON(c.shape, []byte(payload)); err != nil {
		return nil, fmt.Errorf("oracle response has unexpected shape: %w", err)
	}
	if strings.HasPrefix(payload, "[") {
		var out []scheduling.Suggestion
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, fmt.Errorf("failed to decode oracle suggestions: %w", err)
		}
		return out, nil
	}
	var wrapper struct {
		Suggestions []scheduling.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode oracle suggestions: %w", err)
	}
	return wrapper.Suggestions, nil
}

// decodeIdeas mirrors decodeSuggestions for the brainstorm payload.
func (c *Client) decodeIdeas(content string) ([]models.ProjectIdea, error) {
	payload := salvageJSON(content)
	if payload == "" {
		return nil, fmt.Errorf("oracle response contains no JSON payload")
	}
	if err := validation.ValidateJSON(c.ideaShape, []byte(payload)); err != nil {
		return nil, fmt.Errorf("oracle response has unexpected shape: %w", err)
	}
	if strings.HasPrefix(payload, "[") {
		var out []models.ProjectIdea
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, fmt.Errorf("failed to decode oracle ideas: %w", err)
		}
		return out, nil
	}
	var wrapper struct {
		Ideas []models.ProjectIdea `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode oracle ideas: %w", err)
	}
	return wrapper.Ideas, nil
}

// salvageJSON returns the JSON object or array embedded in content,
// stripping markdown fences and surrounding prose the model sometimes adds
// despite the response format.
func salvageJSON(content string) string {
	s := strings.TrimSpace(content)
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
