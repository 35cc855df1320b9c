// Package gemini is the managed-service alternative to the ollama
// client, for deployments that point at Google's generative API instead
// of a self-hosted model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/intellexa/internal/infrastructure/resilience"
)

type Client struct {
	client   *genai.Client
	model    string
	limits   prompt.Limits
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey, model string, limits prompt.Limits, executor *resilience.Executor) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		client:   client,
		model:    model,
		limits:   limits.Normalize(),
		executor: executor,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) GenerateSummary(ctx context.Context, text string, difficulty domain.Difficulty) (domain.GeneratedSummary, error) {
	promptText, truncated := prompt.Summary(text, difficulty, c.limits)
	response, err := c.generate(ctx, "generate_summary", promptText)
	if err != nil {
		return domain.GeneratedSummary{}, err
	}
	return domain.GeneratedSummary{Text: response, Truncated: truncated}, nil
}

func (c *Client) GenerateFlashcards(ctx context.Context, text string) (domain.GeneratedFlashcards, error) {
	promptText, truncated := prompt.Flashcards(text, c.limits)
	response, err := c.generate(ctx, "generate_flashcards", promptText)
	if err != nil {
		return domain.GeneratedFlashcards{}, err
	}
	cards, err := prompt.ParseFlashcards(response, c.limits.FlashcardCount)
	if err != nil {
		return domain.GeneratedFlashcards{}, err
	}
	return domain.GeneratedFlashcards{Cards: cards, Truncated: truncated}, nil
}

func (c *Client) GenerateQuiz(ctx context.Context, text string) (domain.GeneratedQuiz, error) {
	promptText, truncated := prompt.Quiz(text, c.limits)
	response, err := c.generate(ctx, "generate_quiz", promptText)
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}
	questions, err := prompt.ParseQuiz(response, c.limits.QuizQuestionCount, c.limits.QuizOptionCount)
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}
	return domain.GeneratedQuiz{Questions: questions, Truncated: truncated}, nil
}

func (c *Client) GenerateChatReply(ctx context.Context, p domain.ChatPrompt) (string, error) {
	return c.generate(ctx, "generate_chat_reply", prompt.Chat(p))
}

func (c *Client) DetectSubject(ctx context.Context, text string) (string, error) {
	promptText, _ := prompt.Subject(text, c.limits)
	response, err := c.generate(ctx, "detect_subject", promptText)
	if err != nil {
		return "", err
	}
	return prompt.ParseSubject(response), nil
}

func (c *Client) generate(ctx context.Context, operation, promptText string) (string, error) {
	var response string
	call := func(callCtx context.Context) error {
		model := c.client.GenerativeModel(c.model)
		resp, err := model.GenerateContent(callCtx, genai.Text(promptText))
		if err != nil {
			return fmt.Errorf("gemini %s request: %w", operation, err)
		}
		text, err := candidateText(resp)
		if err != nil {
			return err
		}
		response = text
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini."+operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.WrapError(domain.ErrMalformedOutput, "gemini response", errors.New("no candidates"))
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", domain.WrapError(domain.ErrMalformedOutput, "gemini response", errors.New("empty candidate text"))
	}
	return out, nil
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if domain.IsKind(err, domain.ErrMalformedOutput) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	// The SDK surfaces rate limits and upstream unavailability as
	// googleapi errors; treat remote-side failures as transient.
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
