package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/prepcoach/internal/llm/prompts"
	"github.com/pavelanni/prepcoach/internal/model"
)

// Client wraps an OpenAI-compatible API client and implements the coach's
// problem-generation and solution-evaluation ports.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName, variant string) (*Client, error) {
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant: %q", variant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: prompts.Variant(variant),
	}, nil
}

// Ping verifies the LLM endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// GenerateProblem asks the LLM for a fresh practice problem. The returned
// content is the model's structured JSON, kept opaque to the caller.
func (c *Client) GenerateProblem(ctx context.Context, topic model.Topic, difficulty model.Difficulty, skillLevel model.SkillLevel) (*model.Problem, error) {
	prompt, err := prompts.BuildGeneratePrompt(prompts.GenerateData{
		Topic:      string(topic),
		Difficulty: string(difficulty),
		SkillLevel: string(skillLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("build generation prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	content := resp.Choices[0].Message.Content
	slog.Debug("problem generated", "topic", topic, "difficulty", difficulty, "bytes", len(content))

	return &model.Problem{
		ID:          problemID(topic),
		Topic:       topic,
		Difficulty:  difficulty,
		Content:     content,
		GeneratedAt: time.Now(),
	}, nil
}

// evalVerdict is the part of the evaluator's JSON the coach depends on.
// Solved is a pointer so a response missing the verdict is detectable.
type evalVerdict struct {
	Solved *bool   `json:"solved"`
	Score  float64 `json:"score"`
}

// EvaluateSolution sends the submitted code to the LLM for review.
// The full response is surfaced as opaque feedback; the solved verdict and
// score are extracted and validated.
func (c *Client) EvaluateSolution(ctx context.Context, problem model.Problem, code, language string) (*model.Evaluation, error) {
	prompt, err := prompts.BuildEvalPrompt(c.variant, prompts.EvalData{
		ProblemContent: problem.Content,
		Language:       language,
		Code:           code,
	})
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM evaluation call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices for evaluation")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM evaluation", "raw", raw)

	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, err
	}

	return &model.Evaluation{
		ProblemID:   problem.ID,
		Solved:      *verdict.Solved,
		Score:       verdict.Score,
		Feedback:    raw,
		EvaluatedAt: time.Now(),
	}, nil
}

// parseVerdict extracts the solved verdict from the evaluator's JSON.
// A response without an explicit boolean verdict is an evaluation failure:
// progress must never be recorded from a guessed outcome.
func parseVerdict(raw string) (*evalVerdict, error) {
	var v evalVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w (raw: %s)", err, raw)
	}
	if v.Solved == nil {
		return nil, fmt.Errorf("evaluation response missing solved verdict (raw: %s)", raw)
	}
	return &v, nil
}

// problemID mints an opaque unique identifier keyed off the topic slug.
func problemID(topic model.Topic) string {
	slug := strings.ReplaceAll(strings.ToLower(string(topic)), " ", "_")
	return slug + "-" + uuid.NewString()
}
