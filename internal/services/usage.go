package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"akademiya/internal/models"
)

// UsageService persists completion token counters.
type UsageService struct {
	db *sql.DB
}

func NewUsageService(db *sql.DB) *UsageService {
	return &UsageService{db: db}
}

func (s *UsageService) Record(ctx context.Context, rec models.UsageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO completion_usage (session_id, purpose, model, prompt_tokens, completion_tokens, total_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`, rec.SessionID, rec.Purpose, rec.Model, rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.CreatedAt); err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// Summary returns call and token totals grouped by purpose.
func (s *UsageService) Summary(ctx context.Context) ([]models.UsageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT purpose, COUNT(*), COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0), COALESCE(SUM(total_tokens), 0)
		FROM completion_usage
		GROUP BY purpose
		ORDER BY purpose ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []models.UsageSummary
	for rows.Next() {
		var summary models.UsageSummary
		if err := rows.Scan(
			&summary.Purpose,
			&summary.Calls,
			&summary.PromptTokens,
			&summary.CompletionTokens,
			&summary.TotalTokens,
		); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}
	return out, nil
}
