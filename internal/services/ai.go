package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"akademiya/internal/models"
)

var (
	// ErrAIUnavailable is returned when the OpenAI integration is not configured.
	ErrAIUnavailable = errors.New("openai integration is not configured")
)

// CompletionError wraps any failure of the completion call. Network, auth and
// rate-limit errors are not distinguished.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion request failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// CompletionRequest is one system+user exchange with the model.
type CompletionRequest struct {
	SystemPrompt string
	UserText     string
	Temperature  float32
	MaxTokens    int
	JSONMode     bool
	// Purpose labels the call in logs and the usage ledger.
	Purpose   string
	SessionID string
}

type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer sends a single completion request.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// UsageRecorder stores token counters of successful completions.
type UsageRecorder interface {
	Record(ctx context.Context, rec models.UsageRecord) error
}

type AIService struct {
	client *openai.Client
	model  string
	usage  UsageRecorder
	log    *zap.Logger
}

// AIConfig carries what NewAIService needs from the process configuration.
type AIConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

func NewAIService(cfg AIConfig, usage UsageRecorder, log *zap.Logger) *AIService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return &AIService{log: log}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &AIService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		usage:  usage,
		log:    log,
	}
}

// Enabled reports whether an API key was configured.
func (s *AIService) Enabled() bool {
	return !s.disabled()
}

func (s *AIService) disabled() bool {
	return s == nil || s.client == nil || s.model == ""
}

// Complete calls the chat completion endpoint once and returns the reply verbatim.
func (s *AIService) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if s.disabled() {
		return nil, ErrAIUnavailable
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
	}
	if req.UserText != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserText,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	started := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		s.log.Warn("completion failed",
			zap.String("purpose", req.Purpose),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, &CompletionError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &CompletionError{Err: errors.New("openai returned no choices")}
	}

	out := &Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if out.Model == "" {
		out.Model = s.model
	}

	s.log.Info("completion finished",
		zap.String("purpose", req.Purpose),
		zap.String("model", out.Model),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.Int("completion_tokens", out.CompletionTokens),
		zap.Duration("elapsed", time.Since(started)),
	)

	if s.usage != nil {
		rec := models.UsageRecord{
			SessionID:        req.SessionID,
			Purpose:          req.Purpose,
			Model:            out.Model,
			PromptTokens:     out.PromptTokens,
			CompletionTokens: out.CompletionTokens,
			TotalTokens:      out.TotalTokens,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.usage.Record(ctx, rec); err != nil {
			s.log.Warn("record usage", zap.Error(err))
		}
	}

	return out, nil
}
