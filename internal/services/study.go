package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"akademiya/internal/models"
)

var (
	// ErrNoDueCards indicates that there are no cards ready to review.
	ErrNoDueCards = errors.New("no due cards")
	// ErrCardIndex is returned for an index outside the deck.
	ErrCardIndex = errors.New("card index out of range")
)

const workingQueueSize = 20

// StudyService schedules the session's flashcards with FSRS. The deck lives in
// the session; nothing here touches storage.
type StudyService struct {
	params fsrs.Parameters
}

func NewStudyService() *StudyService {
	return &StudyService{params: fsrs.DefaultParam()}
}

func newStudyCard(now time.Time) models.StudyCard {
	return models.StudyCard{Due: now, State: int(fsrs.New)}
}

// Sync resizes the deck to n cards. New positions start unseen and due now;
// dropped positions leave the working queue.
func (s *StudyService) Sync(deck *models.StudyDeck, n int, now time.Time) {
	if n < 0 {
		n = 0
	}
	if len(deck.Cards) > n {
		deck.Cards = deck.Cards[:n]
	}
	for len(deck.Cards) < n {
		deck.Cards = append(deck.Cards, newStudyCard(now))
	}
	queue := deck.WorkingQueue[:0]
	for _, idx := range deck.WorkingQueue {
		if idx < n {
			queue = append(queue, idx)
		}
	}
	deck.WorkingQueue = queue
}

// Reset forgets the schedule of card i, used when its flashcard is replaced.
func (s *StudyService) Reset(deck *models.StudyDeck, i int, now time.Time) error {
	if i < 0 || i >= len(deck.Cards) {
		return ErrCardIndex
	}
	deck.Cards[i] = newStudyCard(now)
	removeFromQueue(deck, i)
	return nil
}

// Next returns the index of the card to study.
// Priority order: 1) working queue, 2) most overdue card, 3) first unseen card.
func (s *StudyService) Next(deck *models.StudyDeck, now time.Time) (int, error) {
	if len(deck.WorkingQueue) > 0 {
		return deck.WorkingQueue[0], nil
	}

	due := -1
	for i, card := range deck.Cards {
		if card.State == int(fsrs.New) || card.Due.After(now) {
			continue
		}
		if due < 0 || card.Due.Before(deck.Cards[due].Due) {
			due = i
		}
	}
	if due >= 0 {
		return due, nil
	}

	for i, card := range deck.Cards {
		if card.State == int(fsrs.New) {
			return i, nil
		}
	}
	return 0, ErrNoDueCards
}

// Review applies rating to card i and returns the review log.
func (s *StudyService) Review(deck *models.StudyDeck, i int, rating fsrs.Rating, now time.Time) (*models.ReviewLog, error) {
	if i < 0 || i >= len(deck.Cards) {
		return nil, ErrCardIndex
	}
	card := &deck.Cards[i]
	scheduling := s.params.Repeat(card.ToFSRSCard(), now)
	info, ok := scheduling[rating]
	if !ok {
		return nil, fmt.Errorf("rating %d not supported", rating)
	}
	card.ApplyFSRSCard(info.Card)

	if rating == fsrs.Again {
		addToQueue(deck, i)
	} else {
		removeFromQueue(deck, i)
	}

	return &models.ReviewLog{
		Index:         i,
		Rating:        int(info.ReviewLog.Rating),
		ScheduledDays: int(info.ReviewLog.ScheduledDays),
		ElapsedDays:   int(info.ReviewLog.ElapsedDays),
		State:         int(info.ReviewLog.State),
		ReviewedAt:    now,
	}, nil
}

func addToQueue(deck *models.StudyDeck, i int) {
	for _, idx := range deck.WorkingQueue {
		if idx == i {
			return
		}
	}
	deck.WorkingQueue = append(deck.WorkingQueue, i)
	// Oldest entry falls out once the queue is full.
	if len(deck.WorkingQueue) > workingQueueSize {
		deck.WorkingQueue = deck.WorkingQueue[1:]
	}
}

func removeFromQueue(deck *models.StudyDeck, i int) {
	for pos, idx := range deck.WorkingQueue {
		if idx == i {
			deck.WorkingQueue = append(deck.WorkingQueue[:pos], deck.WorkingQueue[pos+1:]...)
			return
		}
	}
}

// ParseRating maps again/hard/good/easy to an FSRS rating.
func ParseRating(raw string) (fsrs.Rating, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "again":
		return fsrs.Again, nil
	case "hard":
		return fsrs.Hard, nil
	case "good":
		return fsrs.Good, nil
	case "easy":
		return fsrs.Easy, nil
	default:
		return 0, fmt.Errorf("unknown rating %q", raw)
	}
}
