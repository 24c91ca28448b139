package compose

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/tasks"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/core"
	"github.com/cohere-ai/cohere-go/v2/option"
)

const (
	titlePrompt = "Generate a title given a task description. Keep it simple and descriptive. \n Description: "

	estimatePrompt = "Generate a JSON to estimate the time and size given the task description. " +
		"For time, generate a number in minutes, with 0 being less than 1 minute. " +
		`For size, choose between "small", "medium", "large". ` + "\n Description: "
)

// estimateSchema constrains the JSON the model may return for an estimate.
var estimateSchema = map[string]any{
	"type":     "object",
	"required": []string{"time", "size"},
	"properties": map[string]any{
		"time": map[string]any{"type": "integer"},
		"size": map[string]any{"type": "string", "enum": []string{"small", "medium", "large"}},
	},
}

// CohereClient talks to the Cohere chat endpoint through the Cohere SDK.
type CohereClient struct {
	co    *cohereclient.Client
	model string
}

var _ Composer = (*CohereClient)(nil)

// NewCohereClient creates a client for baseURL (e.g. https://api.cohere.com).
// Every request is bounded by timeout and attempted once.
func NewCohereClient(apiKey, model, baseURL string, timeout time.Duration) *CohereClient {
	return &CohereClient{
		co: cohereclient.NewClient(
			option.WithToken(apiKey),
			option.WithBaseURL(strings.TrimRight(baseURL, "/")),
			option.WithHTTPClient(&http.Client{Timeout: timeout}),
			option.WithMaxAttempts(1),
		),
		model: model,
	}
}

// SuggestTitle asks the model for a short title.
func (c *CohereClient) SuggestTitle(ctx context.Context, description string) (string, error) {
	text, err := c.chat(ctx, &cohere.ChatRequest{
		Model:   cohere.String(c.model),
		Message: titlePrompt + description,
	})
	if err != nil {
		return "", err
	}

	title := cleanTitle(text)
	if title == "" {
		return "", errors.NewValidationError("composer returned an empty title")
	}
	return title, nil
}

// Estimate asks the model for a JSON time/size estimate and validates it.
func (c *CohereClient) Estimate(ctx context.Context, description string) (tasks.Estimate, error) {
	text, err := c.chat(ctx, &cohere.ChatRequest{
		Model:   cohere.String(c.model),
		Message: estimatePrompt + description,
		ResponseFormat: &cohere.ResponseFormat{
			JsonObject: &cohere.JsonResponseFormat{Schema: estimateSchema},
		},
	})
	if err != nil {
		return tasks.Estimate{}, err
	}

	return ParseEstimate(text)
}

// ParseEstimate decodes a model reply of the form {"time": N, "size": S}.
// Both fields are required; time must be a non-negative whole number of
// minutes and size one of small, medium or large.
func ParseEstimate(text string) (tasks.Estimate, error) {
	var raw struct {
		Time *json.Number `json:"time"`
		Size *string      `json:"size"`
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return tasks.Estimate{}, errors.NewValidationError("composer returned invalid JSON", map[string]any{
			"error": err.Error(),
		})
	}

	if raw.Time == nil || raw.Size == nil {
		return tasks.Estimate{}, errors.NewValidationError("composer estimate is missing time or size", map[string]any{
			"response": text,
		})
	}

	minutes, err := raw.Time.Int64()
	if err != nil || minutes < 0 {
		return tasks.Estimate{}, errors.NewValidationError("composer estimate time must be a non-negative integer", map[string]any{
			"time": raw.Time.String(),
		})
	}

	size := tasks.Size(strings.ToLower(strings.TrimSpace(*raw.Size)))
	if !size.Valid() {
		return tasks.Estimate{}, errors.NewValidationError("composer estimate size must be small, medium or large", map[string]any{
			"size": *raw.Size,
		})
	}

	return tasks.Estimate{Time: int(minutes), Size: size}, nil
}

func (c *CohereClient) chat(ctx context.Context, req *cohere.ChatRequest) (string, error) {
	resp, err := c.co.Chat(ctx, req)
	if err != nil {
		return "", classifyChatError(err)
	}
	if resp == nil {
		return "", errors.NewTransportError("composer returned a malformed response", nil)
	}
	return resp.Text, nil
}

// classifyChatError maps SDK failures onto transport errors. Non-2xx
// replies keep their status code and the service's message.
func classifyChatError(err error) error {
	var apiErr *core.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		var body struct {
			Message string `json:"message"`
		}
		if raw := apiErr.Unwrap(); raw != nil {
			_ = json.Unmarshal([]byte(raw.Error()), &body)
		}
		return errors.NewTransportError(fmt.Sprintf("composer returned status %d", apiErr.StatusCode), err, map[string]any{
			"status_code": apiErr.StatusCode,
			"message":     body.Message,
		})
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
		return errors.NewTransportError("composer returned a malformed response", fmt.Errorf("cohere chat: %w", err))
	}

	return errors.NewTransportError("composer unreachable", fmt.Errorf("cohere chat: %w", err))
}

// cleanTitle strips the decoration models like to add around a title.
func cleanTitle(text string) string {
	title := strings.TrimSpace(text)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	title = strings.TrimPrefix(title, "Title:")
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"*'`)
	return strings.TrimSpace(title)
}
