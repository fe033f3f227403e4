package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"akademiya/internal/models"
)

// GenerationResult holds everything the results page needs after one request.
// When ParseFailed is set, Bundle is nil and Raw / Candidate are kept for display.
type GenerationResult struct {
	Raw         string
	Candidate   string
	Bundle      *models.Bundle
	ParseFailed bool
	ParseError  string
}

// GenerationService drives prompt construction, the completion call and parsing.
type GenerationService struct {
	ai          Completer
	temperature float32
	log         *zap.Logger
}

func NewGenerationService(ai Completer, temperature float32, log *zap.Logger) *GenerationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerationService{ai: ai, temperature: temperature, log: log}
}

// Generate requests a bundle for text. Completion failures are returned as
// errors; unparseable or misshaped replies come back as a failed result.
func (s *GenerationService) Generate(ctx context.Context, sessionID, text string, req models.ContentRequest) (*GenerationResult, error) {
	if s.ai == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	kinds := RequestedKinds(req)
	if len(kinds) == 0 {
		return nil, errors.New("no content types requested")
	}

	completion, err := s.ai.Complete(ctx, CompletionRequest{
		SystemPrompt: BuildGenerationPrompt(req),
		UserText:     text,
		Temperature:  s.temperature,
		JSONMode:     true,
		Purpose:      "generate",
		SessionID:    sessionID,
	})
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{Raw: completion.Text}
	obj, err := ParseObject(completion.Text)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			result.Candidate = parseErr.Candidate
		}
		result.ParseFailed = true
		result.ParseError = err.Error()
		s.log.Warn("generation response not parseable", zap.Error(err))
		return result, nil
	}

	bundle, err := DecodeBundle(obj, kinds)
	if err != nil {
		result.Candidate = jsonCandidate(completion.Text)
		result.ParseFailed = true
		result.ParseError = fmt.Sprintf("unexpected content shape: %v", err)
		s.log.Warn("generation response has wrong shape", zap.Error(err))
		return result, nil
	}

	result.Bundle = bundle
	s.log.Info("bundle generated", zap.Strings("kinds", kindStrings(bundle.Generated())))
	return result, nil
}

// SummarizeChunks summarizes text chunk by chunk, sequentially, and joins the
// partial summaries in input order.
func (s *GenerationService) SummarizeChunks(ctx context.Context, sessionID, text string, wordsPerChunk int) ([]string, error) {
	if s.ai == nil {
		return nil, ErrAIUnavailable
	}
	chunks := ChunkWords(text, wordsPerChunk)
	if len(chunks) == 0 {
		return nil, ErrNoText
	}

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		completion, err := s.ai.Complete(ctx, CompletionRequest{
			SystemPrompt: BuildChunkSummaryPrompt(i+1, len(chunks)),
			UserText:     chunk,
			Temperature:  s.temperature,
			Purpose:      "summarize chunk",
			SessionID:    sessionID,
		})
		if err != nil {
			return nil, fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, strings.TrimSpace(completion.Text))
	}
	return summaries, nil
}

func kindStrings(kinds []models.ContentKind) []string {
	out := make([]string, len(kinds))
	for i, kind := range kinds {
		out[i] = string(kind)
	}
	return out
}
