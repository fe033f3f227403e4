package services

import (
	"testing"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiya/internal/models"
)

func TestStudySync(t *testing.T) {
	svc := NewStudyService()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	deck := &models.StudyDeck{}

	svc.Sync(deck, 3, now)
	require.Len(t, deck.Cards, 3)
	assert.Equal(t, int(fsrs.New), deck.Cards[2].State)

	deck.WorkingQueue = []int{2, 0}
	svc.Sync(deck, 2, now)
	assert.Len(t, deck.Cards, 2)
	assert.Equal(t, []int{0}, deck.WorkingQueue)
}

func TestStudyNextPrefersNewCardsInOrder(t *testing.T) {
	svc := NewStudyService()
	now := time.Now().UTC()
	deck := &models.StudyDeck{}
	svc.Sync(deck, 2, now)

	idx, err := svc.Next(deck, now)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestStudyReviewSchedules(t *testing.T) {
	svc := NewStudyService()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	deck := &models.StudyDeck{}
	svc.Sync(deck, 2, now)

	log, err := svc.Review(deck, 0, fsrs.Easy, now)
	require.NoError(t, err)
	assert.Equal(t, 0, log.Index)
	assert.Equal(t, int(fsrs.Easy), log.Rating)
	assert.True(t, deck.Cards[0].Due.After(now))
	assert.Equal(t, 1, deck.Cards[0].Reps)

	idx, err := svc.Next(deck, now)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = svc.Review(deck, 1, fsrs.Good, now)
	require.NoError(t, err)
	later := now.Add(365 * 24 * time.Hour)
	idx, err = svc.Next(deck, later)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, idx)
}

func TestStudyAgainUsesWorkingQueue(t *testing.T) {
	svc := NewStudyService()
	now := time.Now().UTC()
	deck := &models.StudyDeck{}
	svc.Sync(deck, 3, now)

	_, err := svc.Review(deck, 2, fsrs.Again, now)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, deck.WorkingQueue)

	idx, err := svc.Next(deck, now)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = svc.Review(deck, 2, fsrs.Good, now)
	require.NoError(t, err)
	assert.Empty(t, deck.WorkingQueue)
}

func TestStudyNoDueCards(t *testing.T) {
	svc := NewStudyService()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	deck := &models.StudyDeck{}
	svc.Sync(deck, 1, now)

	_, err := svc.Review(deck, 0, fsrs.Easy, now)
	require.NoError(t, err)

	_, err = svc.Next(deck, now)
	assert.ErrorIs(t, err, ErrNoDueCards)

	_, err = svc.Next(&models.StudyDeck{}, now)
	assert.ErrorIs(t, err, ErrNoDueCards)
}

func TestStudyResetAndBounds(t *testing.T) {
	svc := NewStudyService()
	now := time.Now().UTC()
	deck := &models.StudyDeck{}
	svc.Sync(deck, 1, now)

	_, err := svc.Review(deck, 0, fsrs.Again, now)
	require.NoError(t, err)
	require.NoError(t, svc.Reset(deck, 0, now))
	assert.Equal(t, int(fsrs.New), deck.Cards[0].State)
	assert.Empty(t, deck.WorkingQueue)

	assert.ErrorIs(t, svc.Reset(deck, 3, now), ErrCardIndex)
	_, err = svc.Review(deck, -1, fsrs.Good, now)
	assert.ErrorIs(t, err, ErrCardIndex)
}

func TestParseRating(t *testing.T) {
	rating, err := ParseRating(" Good ")
	require.NoError(t, err)
	assert.Equal(t, fsrs.Good, rating)

	_, err = ParseRating("meh")
	assert.Error(t, err)
}
