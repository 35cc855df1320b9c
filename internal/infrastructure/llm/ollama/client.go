package ollama

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/intellexa/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL       string
	Model         string
	Limits        prompt.Limits
	CallTimeout   time.Duration
	RatePerSecond float64
	RateBurst     int
}

// Client implements ports.ContentGenerator against an Ollama-compatible
// generation endpoint. All remote calls go through the resilience
// executor and a client-side rate limiter.
type Client struct {
	cfg      Config
	limits   prompt.Limits
	executor *resilience.Executor
	limiter  *rate.Limiter
	http     *httpDoer
}

func New(cfg Config, executor *resilience.Executor) *Client {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 120 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 2
	}
	return &Client{
		cfg:      cfg,
		limits:   cfg.Limits.Normalize(),
		executor: executor,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		http:     newHTTPDoer(strings.TrimRight(cfg.BaseURL, "/"), cfg.CallTimeout),
	}
}

func (c *Client) GenerateSummary(ctx context.Context, text string, difficulty domain.Difficulty) (domain.GeneratedSummary, error) {
	promptText, truncated := prompt.Summary(text, difficulty, c.limits)
	response, err := c.generateText(ctx, "generate_summary", promptText)
	if err != nil {
		return domain.GeneratedSummary{}, err
	}
	return domain.GeneratedSummary{Text: response, Truncated: truncated}, nil
}

func (c *Client) GenerateFlashcards(ctx context.Context, text string) (domain.GeneratedFlashcards, error) {
	promptText, truncated := prompt.Flashcards(text, c.limits)

	var cards []domain.Flashcard
	err := c.execute(ctx, "generate_flashcards", func(callCtx context.Context) error {
		raw, err := c.http.generate(callCtx, c.cfg.Model, promptText, true)
		if err != nil {
			return err
		}
		cards, err = prompt.ParseFlashcards(raw, c.limits.FlashcardCount)
		return err
	})
	if err != nil {
		return domain.GeneratedFlashcards{}, err
	}
	return domain.GeneratedFlashcards{Cards: cards, Truncated: truncated}, nil
}

func (c *Client) GenerateQuiz(ctx context.Context, text string) (domain.GeneratedQuiz, error) {
	promptText, truncated := prompt.Quiz(text, c.limits)

	var questions []domain.QuizQuestion
	err := c.execute(ctx, "generate_quiz", func(callCtx context.Context) error {
		raw, err := c.http.generate(callCtx, c.cfg.Model, promptText, true)
		if err != nil {
			return err
		}
		questions, err = prompt.ParseQuiz(raw, c.limits.QuizQuestionCount, c.limits.QuizOptionCount)
		return err
	})
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}
	return domain.GeneratedQuiz{Questions: questions, Truncated: truncated}, nil
}

func (c *Client) GenerateChatReply(ctx context.Context, p domain.ChatPrompt) (string, error) {
	return c.generateText(ctx, "generate_chat_reply", prompt.Chat(p))
}

func (c *Client) DetectSubject(ctx context.Context, text string) (string, error) {
	promptText, _ := prompt.Subject(text, c.limits)
	response, err := c.generateText(ctx, "detect_subject", promptText)
	if err != nil {
		return "", err
	}
	return prompt.ParseSubject(response), nil
}

func (c *Client) generateText(ctx context.Context, operation, promptText string) (string, error) {
	var response string
	err := c.execute(ctx, operation, func(callCtx context.Context) error {
		raw, err := c.http.generate(callCtx, c.cfg.Model, promptText, false)
		if err != nil {
			return err
		}
		response = raw
		return nil
	})
	if err != nil {
		return "", err
	}
	return response, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	call := func(callCtx context.Context) error {
		if err := c.limiter.Wait(callCtx); err != nil {
			return err
		}
		return fn(callCtx)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, call, classifyGenerationError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
