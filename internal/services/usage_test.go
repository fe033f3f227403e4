package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiya/internal/db"
	"akademiya/internal/models"
)

func TestUsageSummary(t *testing.T) {
	conn, err := db.Open(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	svc := NewUsageService(conn)
	ctx := context.Background()
	records := []models.UsageRecord{
		{Purpose: "generate", Model: "m", PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		{Purpose: "generate", Model: "m", PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		{Purpose: "add flashcard", Model: "m", PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
	}
	for _, rec := range records {
		require.NoError(t, svc.Record(ctx, rec))
	}

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.UsageSummary{
		{Purpose: "add flashcard", Calls: 1, PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
		{Purpose: "generate", Calls: 2, PromptTokens: 110, CompletionTokens: 55, TotalTokens: 165},
	}, summary)
}
